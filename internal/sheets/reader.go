package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/roster"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
)

// valuesFetcher returns the raw cell grid of a range.
type valuesFetcher func(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)

// RosterReader loads roster records from a worksheet.
type RosterReader struct {
	fetch   valuesFetcher
	logger  *slog.Logger
	columns roster.Columns
	config  Config
}

// NewRosterReader creates a reader backed by the Google Sheets API.
func NewRosterReader(ctx context.Context, config Config, columns roster.Columns, logger *slog.Logger) (*RosterReader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	fetch := func(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
		resp, err := srv.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}

	return newRosterReader(fetch, config, columns, logger), nil
}

func newRosterReader(fetch valuesFetcher, config Config, columns roster.Columns, logger *slog.Logger) *RosterReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RosterReader{
		fetch:   fetch,
		config:  config,
		columns: columns,
		logger:  logger,
	}
}

// FetchRecords reads the whole worksheet and maps it through the header row.
func (r *RosterReader) FetchRecords(ctx context.Context) ([]model.RosterRecord, error) {
	readRange := quoteSheetName(r.config.Worksheet)

	retryOpts := service.RetryOptions{
		Operation:    "read roster worksheet",
		MaxAttempts:  r.config.RetryAttempts,
		InitialDelay: r.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var values [][]any
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		values, fetchErr = r.fetch(ctx, r.config.SpreadsheetID, readRange)
		return classifyError(fetchErr)
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read worksheet %q: %w", common.ErrRosterUnavailable, r.config.Worksheet, err)
	}

	records, err := roster.FromRows(toStrings(values), r.columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRosterUnavailable, err)
	}

	r.logger.Debug("read roster from sheets",
		"spreadsheet_id", r.config.SpreadsheetID,
		"worksheet", r.config.Worksheet,
		"records", len(records))

	return records, nil
}

// LoadRoster implements service.RosterSource.
func (r *RosterReader) LoadRoster(ctx context.Context) (service.RosterLookup, error) {
	records, err := r.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	return roster.NewTable(records), nil
}

// classifyError marks client errors as permanent so they are not retried.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= 500:
		return err
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toStrings(values [][]any) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				cells[j] = fmt.Sprint(cell)
			}
		}
		rows[i] = cells
	}
	return rows
}

// createSheetsService creates a read-only Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" || config.ServiceAccountJSON != "" {
		jsonKey := []byte(config.ServiceAccountJSON)
		if config.ServiceAccountPath != "" {
			var err error
			jsonKey, err = os.ReadFile(config.ServiceAccountPath)
			if err != nil {
				return nil, fmt.Errorf("unable to read service account key file: %w", err)
			}
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
