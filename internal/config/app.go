package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/ledger"
	"github.com/Veraticus/the-receipts-must-flow/internal/roster"
)

// Roster source kinds.
const (
	RosterSourceSheets = "sheets"
	RosterSourceXLSX   = "xlsx"
	RosterSourceSQLite = "sqlite"
)

// ServerConfig configures the webhook listener.
type ServerConfig struct {
	Addr      string
	PublicURL string
}

// LINEConfig holds the messaging channel credentials.
type LINEConfig struct {
	ChannelSecret      string
	ChannelAccessToken string
}

// RosterConfig selects where payee details come from.
type RosterConfig struct {
	Source    string
	XLSXPath  string
	XLSXSheet string // First sheet when empty
	Worksheet string
	Columns   roster.Columns
	// Cache mirrors fetched rosters into the database and serves it when
	// the source is unreachable.
	Cache bool
}

// AppConfig is the resolved application configuration.
type AppConfig struct {
	Roster        RosterConfig
	LINE          LINEConfig
	Server        ServerConfig
	Issuer        string
	OutputDir     string
	FontPath      string
	DatabasePath  string
	Groups        ledger.GroupTable
	LookupTimeout time.Duration
	Concurrency   int
}

// SetDefaults registers default values for every key AppConfig reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("issuer.name", "JOBドラゴン")
	v.SetDefault("output.dir", "./pdfs")
	v.SetDefault("lookup.timeout", 5*time.Second)
	v.SetDefault("render.concurrency", 1)
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("roster.source", RosterSourceSheets)
	v.SetDefault("roster.worksheet", "シート1")
	v.SetDefault("roster.cache", true)
	v.SetDefault("database.path", "~/.local/share/receipts/receipts.db")

	cols := roster.DefaultColumns()
	v.SetDefault("roster.columns.key", cols.Key)
	v.SetDefault("roster.columns.legal_name", cols.LegalName)
	v.SetDefault("roster.columns.address", cols.Address)
	v.SetDefault("roster.columns.phone", cols.Phone)
	v.SetDefault("roster.columns.birthdate", cols.Birthdate)
}

// Load resolves an AppConfig from v and validates it.
func Load(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Issuer:        strings.TrimSpace(v.GetString("issuer.name")),
		OutputDir:     ExpandPath(v.GetString("output.dir")),
		FontPath:      ExpandPath(v.GetString("font.path")),
		DatabasePath:  ExpandPath(v.GetString("database.path")),
		LookupTimeout: v.GetDuration("lookup.timeout"),
		Concurrency:   v.GetInt("render.concurrency"),
		Server: ServerConfig{
			Addr:      v.GetString("server.addr"),
			PublicURL: strings.TrimRight(v.GetString("server.public_url"), "/"),
		},
		LINE: LINEConfig{
			ChannelSecret:      v.GetString("line.channel_secret"),
			ChannelAccessToken: v.GetString("line.channel_access_token"),
		},
		Roster: RosterConfig{
			Source:    strings.ToLower(v.GetString("roster.source")),
			XLSXPath:  ExpandPath(v.GetString("roster.xlsx_path")),
			XLSXSheet: v.GetString("roster.xlsx_sheet"),
			Worksheet: v.GetString("roster.worksheet"),
			Cache:     v.GetBool("roster.cache"),
		},
	}

	if port := v.GetString("server.port"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	cfg.Roster.Columns = roster.Columns{
		Key:       v.GetString("roster.columns.key"),
		LegalName: v.GetString("roster.columns.legal_name"),
		Address:   v.GetString("roster.columns.address"),
		Phone:     v.GetString("roster.columns.phone"),
		Birthdate: v.GetString("roster.columns.birthdate"),
	}

	groups, err := loadGroups(v)
	if err != nil {
		return nil, err
	}
	cfg.Groups = groups

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadGroups prefers groups.file, then an inline groups.table list, then
// the built-in table.
func loadGroups(v *viper.Viper) (ledger.GroupTable, error) {
	if path := v.GetString("groups.file"); path != "" {
		table, err := ledger.LoadGroupTable(ExpandPath(path))
		if err != nil {
			return nil, fmt.Errorf("%w: groups.file: %w", common.ErrInvalidConfig, err)
		}
		return table, nil
	}

	if v.IsSet("groups.table") {
		var table ledger.GroupTable
		if err := v.UnmarshalKey("groups.table", &table); err != nil {
			return nil, fmt.Errorf("%w: groups.table: %w", common.ErrInvalidConfig, err)
		}
		if err := table.Validate(); err != nil {
			return nil, fmt.Errorf("%w: groups.table: %w", common.ErrInvalidConfig, err)
		}
		return table, nil
	}

	return ledger.DefaultGroupTable(), nil
}

// Validate checks the settings every command relies on.
func (c *AppConfig) Validate() error {
	if c.Issuer == "" {
		return fmt.Errorf("%w: issuer.name is required", common.ErrMissingConfig)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output.dir is required", common.ErrMissingConfig)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("%w: lookup.timeout must be positive", common.ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: render.concurrency must be at least 1", common.ErrInvalidConfig)
	}
	if c.Roster.Columns.Key == "" {
		return fmt.Errorf("%w: roster.columns.key is required", common.ErrMissingConfig)
	}

	switch c.Roster.Source {
	case RosterSourceSheets:
	case RosterSourceXLSX:
		if c.Roster.XLSXPath == "" {
			return fmt.Errorf("%w: roster.xlsx_path is required for the xlsx source", common.ErrMissingConfig)
		}
	case RosterSourceSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: database.path is required for the sqlite source", common.ErrMissingConfig)
		}
	default:
		return fmt.Errorf("%w: unknown roster.source %q", common.ErrInvalidConfig, c.Roster.Source)
	}

	return nil
}

// ValidateServe additionally requires the messaging channel credentials.
func (c *AppConfig) ValidateServe() error {
	if c.LINE.ChannelSecret == "" {
		return fmt.Errorf("%w: line.channel_secret is required", common.ErrMissingConfig)
	}
	if c.LINE.ChannelAccessToken == "" {
		return fmt.Errorf("%w: line.channel_access_token is required", common.ErrMissingConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", common.ErrMissingConfig)
	}
	return nil
}
