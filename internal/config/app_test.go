package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/ledger"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "JOBドラゴン", cfg.Issuer)
	assert.Equal(t, "./pdfs", cfg.OutputDir)
	assert.Equal(t, 5*time.Second, cfg.LookupTimeout)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, RosterSourceSheets, cfg.Roster.Source)
	assert.Equal(t, "シート1", cfg.Roster.Worksheet)
	assert.Equal(t, "源氏名α", cfg.Roster.Columns.Key)
	assert.Equal(t, "生年月日", cfg.Roster.Columns.Birthdate)
	assert.True(t, cfg.Roster.Cache)
	assert.Equal(t, ledger.DefaultGroupTable(), cfg.Groups)
}

func TestLoad_Overrides(t *testing.T) {
	v := newViper()
	v.Set("issuer.name", "  Example KK ")
	v.Set("server.public_url", "https://bot.example.com/")
	v.Set("roster.source", "XLSX")
	v.Set("roster.xlsx_path", "/srv/roster.xlsx")
	v.Set("roster.columns.key", "name")
	v.Set("render.concurrency", 4)
	v.Set("server.port", "8080")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "Example KK", cfg.Issuer)
	assert.Equal(t, "https://bot.example.com", cfg.Server.PublicURL)
	assert.Equal(t, RosterSourceXLSX, cfg.Roster.Source)
	assert.Equal(t, "name", cfg.Roster.Columns.Key)
	assert.Equal(t, "氏名", cfg.Roster.Columns.LegalName)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_GroupsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.yaml")
	require.NoError(t, os.WriteFile(path, []byte("EAST: [東]\nWEST: [西]\n"), 0600))

	v := newViper()
	v.Set("groups.file", path)

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Len(t, cfg.Groups, 2)
	assert.Equal(t, model.GroupID("EAST"), cfg.Groups[0].ID)
	assert.Equal(t, model.GroupID("WEST"), cfg.Groups[1].ID)
}

func TestLoad_GroupsTable(t *testing.T) {
	v := newViper()
	v.Set("groups.table", []map[string]any{
		{"id": "NORTH", "aliases": []string{"北", "north"}},
	})

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ledger.GroupTable{{ID: "NORTH", Aliases: []string{"北", "north"}}}, cfg.Groups)
}

func TestLoad_InvalidGroups(t *testing.T) {
	v := newViper()
	v.Set("groups.file", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	v = newViper()
	v.Set("groups.table", []map[string]any{{"id": "", "aliases": []string{"x"}}})
	_, err = Load(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{
			Issuer:        "JOBドラゴン",
			OutputDir:     "pdfs",
			LookupTimeout: time.Second,
			Concurrency:   1,
			DatabasePath:  "receipts.db",
			Roster:        RosterConfig{Source: RosterSourceSheets, Columns: rosterColumns()},
		}
	}

	tests := []struct {
		wantErr error
		mutate  func(*AppConfig)
		name    string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "no issuer", mutate: func(c *AppConfig) { c.Issuer = "" }, wantErr: common.ErrMissingConfig},
		{name: "no output dir", mutate: func(c *AppConfig) { c.OutputDir = "" }, wantErr: common.ErrMissingConfig},
		{name: "zero timeout", mutate: func(c *AppConfig) { c.LookupTimeout = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "zero concurrency", mutate: func(c *AppConfig) { c.Concurrency = 0 }, wantErr: common.ErrInvalidConfig},
		{name: "xlsx without path", mutate: func(c *AppConfig) { c.Roster.Source = RosterSourceXLSX }, wantErr: common.ErrMissingConfig},
		{name: "sqlite", mutate: func(c *AppConfig) { c.Roster.Source = RosterSourceSQLite }},
		{name: "unknown source", mutate: func(c *AppConfig) { c.Roster.Source = "csv" }, wantErr: common.ErrInvalidConfig},
		{name: "no key column", mutate: func(c *AppConfig) { c.Roster.Columns.Key = "" }, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAppConfig_ValidateServe(t *testing.T) {
	cfg := AppConfig{Server: ServerConfig{Addr: ":5000"}}
	assert.ErrorIs(t, cfg.ValidateServe(), common.ErrMissingConfig)

	cfg.LINE = LINEConfig{ChannelSecret: "secret", ChannelAccessToken: "token"}
	assert.NoError(t, cfg.ValidateServe())
}
