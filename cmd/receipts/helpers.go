package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
	"github.com/Veraticus/the-receipts-must-flow/internal/config"
	"github.com/Veraticus/the-receipts-must-flow/internal/receipt"
	"github.com/Veraticus/the-receipts-must-flow/internal/roster"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
	"github.com/Veraticus/the-receipts-must-flow/internal/sheets"
	"github.com/Veraticus/the-receipts-must-flow/internal/storage"
)

// upstreamRoster is a roster system of record.
type upstreamRoster interface {
	roster.RecordSource
	service.RosterSource
}

func loadAppConfig() (*config.AppConfig, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the roster cache and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.AppConfig) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initUpstream builds the configured roster system of record.
func initUpstream(ctx context.Context, cfg *config.AppConfig) (upstreamRoster, error) {
	switch cfg.Roster.Source {
	case config.RosterSourceXLSX:
		return &roster.XLSXSource{
			Path:    cfg.Roster.XLSXPath,
			Sheet:   cfg.Roster.XLSXSheet,
			Columns: cfg.Roster.Columns,
		}, nil
	case config.RosterSourceSheets:
		sheetsConfig, err := config.LoadSheetsConfig()
		if err != nil {
			return nil, fmt.Errorf("google sheets roster: %w", err)
		}
		sheetsConfig.Worksheet = cfg.Roster.Worksheet
		reader, err := sheets.NewRosterReader(ctx, *sheetsConfig, cfg.Roster.Columns, slog.Default())
		if err != nil {
			return nil, err
		}
		return reader, nil
	default:
		return nil, fmt.Errorf("roster source %q has no upstream", cfg.Roster.Source)
	}
}

// initRosterSource returns the source messages resolve payees against and a
// cleanup function for anything it opened.
func initRosterSource(ctx context.Context, cfg *config.AppConfig) (service.RosterSource, func(), error) {
	noop := func() {}

	if cfg.Roster.Source == config.RosterSourceSQLite {
		store, err := initStorage(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	upstream, err := initUpstream(ctx, cfg)
	if err != nil {
		return nil, noop, err
	}
	if !cfg.Roster.Cache {
		return upstream, noop, nil
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		slog.Warn("roster cache unavailable, reading the source directly", "error", err)
		return upstream, noop, nil
	}

	return &roster.CachedSource{
		Upstream: upstream,
		Cache:    store,
		Logger:   slog.Default(),
	}, func() { _ = store.Close() }, nil
}

// deferredSource opens the configured roster source on first use, so
// messages without entries never touch the roster.
type deferredSource struct {
	cfg     *config.AppConfig
	source  service.RosterSource
	cleanup func()
}

func (d *deferredSource) LoadRoster(ctx context.Context) (service.RosterLookup, error) {
	if d.source == nil {
		source, cleanup, err := initRosterSource(ctx, d.cfg)
		if err != nil {
			return nil, err
		}
		d.source, d.cleanup = source, cleanup
	}
	return d.source.LoadRoster(ctx)
}

func (d *deferredSource) Close() {
	if d.cleanup != nil {
		d.cleanup()
	}
}

// newOrchestrator builds the batch pipeline pieces shared by serve and issue.
func newOrchestrator(cfg *config.AppConfig) (*receipt.Renderer, *batch.Orchestrator, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	renderer := receipt.NewRenderer(receipt.Config{FontPath: cfg.FontPath}, slog.Default())
	orchestrator := batch.NewOrchestrator(batch.Config{
		Issuer:        cfg.Issuer,
		OutputDir:     cfg.OutputDir,
		LookupTimeout: cfg.LookupTimeout,
		Concurrency:   cfg.Concurrency,
	}, slog.Default())

	return renderer, orchestrator, nil
}

// readLedger reads the message text from a file, or stdin for "" and "-".
func readLedger(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
