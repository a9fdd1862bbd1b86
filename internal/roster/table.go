package roster

import (
	"context"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
)

// Table is an immutable in-memory roster indexed by normalized key.
type Table struct {
	index   map[string]int
	records []model.RosterRecord
}

// NewTable indexes records. Records without a key are dropped and the first
// record wins when two normalize to the same key.
func NewTable(records []model.RosterRecord) *Table {
	t := &Table{
		index:   make(map[string]int, len(records)),
		records: make([]model.RosterRecord, 0, len(records)),
	}
	for _, r := range records {
		key := NormalizeKey(r.MatchKey)
		if key == "" {
			continue
		}
		if _, dup := t.index[key]; dup {
			continue
		}
		t.index[key] = len(t.records)
		t.records = append(t.records, r)
	}
	return t
}

// Lookup returns the record for a normalized key.
func (t *Table) Lookup(ctx context.Context, matchKey string) (*model.RosterRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := t.index[NormalizeKey(matchKey)]
	if !ok {
		return nil, common.ErrNotFound
	}
	record := t.records[i]
	return &record, nil
}

// LoadRoster lets a fixed table act as a roster source.
func (t *Table) LoadRoster(_ context.Context) (service.RosterLookup, error) {
	return t, nil
}

// Len returns the number of indexed records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns the indexed records in their original order.
func (t *Table) Records() []model.RosterRecord {
	out := make([]model.RosterRecord, len(t.records))
	copy(out, t.records)
	return out
}
