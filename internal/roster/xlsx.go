package roster

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
)

// XLSXSource reads the roster from a local workbook.
type XLSXSource struct {
	Path    string
	Sheet   string // First sheet when empty
	Columns Columns
}

// FetchRecords reads every roster row from the workbook.
func (x *XLSXSource) FetchRecords(ctx context.Context) ([]model.RosterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(x.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %w", common.ErrRosterUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	sheet := x.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook %s has no sheets", common.ErrRosterUnavailable, x.Path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %q: %w", common.ErrRosterUnavailable, sheet, err)
	}

	records, err := FromRows(rows, x.Columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRosterUnavailable, err)
	}
	return records, nil
}

// LoadRoster implements service.RosterSource.
func (x *XLSXSource) LoadRoster(ctx context.Context) (service.RosterLookup, error) {
	records, err := x.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	return NewTable(records), nil
}
