package roster

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// Columns names the header cells holding each roster field.
type Columns struct {
	Key       string
	LegalName string
	Address   string
	Phone     string
	Birthdate string
}

// DefaultColumns returns the headers used by the roster spreadsheet.
func DefaultColumns() Columns {
	return Columns{
		Key:       "源氏名α",
		LegalName: "氏名",
		Address:   "住所",
		Phone:     "電話番号",
		Birthdate: "生年月日",
	}
}

// FromRows converts a header row plus data rows into roster records.
// Only the key column is required; other missing columns read as empty.
func FromRows(rows [][]string, cols Columns) ([]model.RosterRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster has no header row")
	}

	header := make(map[string]int, len(rows[0]))
	for i, cell := range rows[0] {
		name := strings.TrimSpace(cell)
		if _, dup := header[name]; !dup {
			header[name] = i
		}
	}

	keyIdx, ok := header[cols.Key]
	if !ok {
		return nil, fmt.Errorf("roster is missing key column %q", cols.Key)
	}

	field := func(row []string, name string) string {
		i, ok := header[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]model.RosterRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if keyIdx >= len(row) || strings.TrimSpace(row[keyIdx]) == "" {
			continue
		}
		records = append(records, model.RosterRecord{
			MatchKey:  strings.TrimSpace(row[keyIdx]),
			LegalName: field(row, cols.LegalName),
			Address:   field(row, cols.Address),
			Phone:     field(row, cols.Phone),
			Birthdate: field(row, cols.Birthdate),
		})
	}
	return records, nil
}
