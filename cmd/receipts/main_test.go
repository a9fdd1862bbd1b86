package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/config"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// setupViper resets global configuration to defaults for one test.
func setupViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	viper.Set("database.path", filepath.Join(t.TempDir(), "receipts.db"))
	t.Cleanup(viper.Reset)
}

func writeRosterWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"源氏名α", "氏名", "住所", "電話番号", "生年月日"},
		{"sato", "佐藤 花子", "東京都新宿区", "09012345678", "1990/01/01"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadLedger(t *testing.T) {
	text, err := readLedger("", strings.NewReader("MINE\n佐藤 12000"))
	require.NoError(t, err)
	assert.Equal(t, "MINE\n佐藤 12000", text)

	path := filepath.Join(t.TempDir(), "message.txt")
	require.NoError(t, os.WriteFile(path, []byte("M\n田中 8000"), 0600))
	text, err = readLedger(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "M\n田中 8000", text)

	_, err = readLedger(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	setupViper(t)

	cmd := parseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("MINE\n佐藤 12,000\nM\n田中 ¥8000\nメモ"))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "MINE")
	assert.Contains(t, out.String(), "12000")
	assert.Contains(t, out.String(), "田中")
	assert.Contains(t, out.String(), "8000")
}

func TestParseCommand_NoEntries(t *testing.T) {
	setupViper(t)

	cmd := parseCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("hello"))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "No entries found")
}

func TestIssueCommand(t *testing.T) {
	setupViper(t)
	outputDir := filepath.Join(t.TempDir(), "pdfs")
	viper.Set("output.dir", outputDir)
	viper.Set("roster.source", config.RosterSourceXLSX)
	viper.Set("roster.xlsx_path", writeRosterWorkbook(t))
	viper.Set("roster.cache", false)

	cmd := issueCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("MINE\nSato 12000\n鈴木 15000"))
	cmd.SetArgs([]string{"--date", "2026-10-18", "--no-progress", "--base-url", "https://bot.example.com"})

	err := cmd.Execute()
	require.Error(t, err, "one payee is not in the roster")
	assert.Contains(t, err.Error(), "1 of 2")

	assert.FileExists(t, filepath.Join(outputDir, "Sato_12000.pdf"))
	assert.Contains(t, out.String(), "https://bot.example.com/pdfs/Sato_12000.pdf")
	assert.Contains(t, out.String(), "【未登録】MINE 鈴木 15,000")
}

func TestIssueCommand_NoEntriesSkipsRoster(t *testing.T) {
	setupViper(t)
	viper.Set("output.dir", t.TempDir())
	viper.Set("roster.source", config.RosterSourceXLSX)
	viper.Set("roster.xlsx_path", filepath.Join(t.TempDir(), "missing.xlsx"))

	cmd := issueCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("hello"))
	cmd.SetArgs([]string{"--no-progress"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "No entries found")
	assert.Contains(t, out.String(), batch.UsageMessage)
}

func TestIssueCommand_RosterErrorMatchesBot(t *testing.T) {
	setupViper(t)
	viper.Set("output.dir", t.TempDir())
	viper.Set("roster.source", config.RosterSourceXLSX)
	viper.Set("roster.xlsx_path", filepath.Join(t.TempDir(), "missing.xlsx"))
	viper.Set("roster.cache", false)

	cmd := issueCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("MINE\nsato 12000"))
	cmd.SetArgs([]string{"--no-progress"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), batch.RosterErrorPrefix), err.Error())
	assert.ErrorIs(t, err, common.ErrRosterUnavailable)
}

func TestIssueCommand_CachesRoster(t *testing.T) {
	setupViper(t)
	viper.Set("output.dir", t.TempDir())
	viper.Set("roster.source", config.RosterSourceXLSX)
	viper.Set("roster.xlsx_path", writeRosterWorkbook(t))

	cmd := issueCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("M\nsato 8000"))
	cmd.SetArgs([]string{"--no-progress"})
	require.NoError(t, cmd.Execute())

	cfg, err := loadAppConfig()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	store, err := initStorage(ctx, cfg)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	records, err := store.ListRoster(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "佐藤 花子", records[0].LegalName)
}

func TestFormatResult(t *testing.T) {
	result := model.BatchResult{
		Successes: []model.Success{{
			Entry:     model.LedgerEntry{Group: "MINE", PayeeLabel: "sato", Amount: 12000},
			Artifact:  model.ReceiptArtifact{Path: "/srv/pdfs/sato_12000.pdf"},
			Reference: "sato_12000.pdf",
		}},
		Failures: []model.Failure{{
			Entry: model.LedgerEntry{Group: "M", PayeeLabel: "tanaka", Amount: 8000},
			Kind:  model.FailureUnregistered,
		}},
	}

	local := formatResult(result, "", "/srv/pdfs")
	assert.Contains(t, local, "MINE sato ¥12,000 → /srv/pdfs/sato_12000.pdf")
	assert.Contains(t, local, "【未登録】M tanaka 8,000")
	assert.Contains(t, local, "1 issued, 1 not issued")

	linked := formatResult(result, "https://bot.example.com", "/srv/pdfs")
	assert.Contains(t, linked, "https://bot.example.com/pdfs/sato_12000.pdf")
}
