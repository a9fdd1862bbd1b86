package testutil

import (
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// RosterBuilder assembles roster records for tests.
//
// Example:
//
//	records := testutil.NewRosterBuilder().
//		WithPerson("sato", "佐藤 花子").
//		WithIssuer("JOBドラゴン").
//		Build()
type RosterBuilder struct {
	records []model.RosterRecord
}

// NewRosterBuilder creates an empty builder.
func NewRosterBuilder() *RosterBuilder {
	return &RosterBuilder{}
}

// WithPerson adds a payee with placeholder contact details.
func (b *RosterBuilder) WithPerson(key, legalName string) *RosterBuilder {
	return b.WithRecord(model.RosterRecord{
		MatchKey:  key,
		LegalName: legalName,
		Address:   "東京都新宿区西新宿2-8-1",
		Phone:     "03-1234-5678",
		Birthdate: "1990/01/01",
	})
}

// WithIssuer adds a record whose key equals the issuer name, which yields
// house receipts.
func (b *RosterBuilder) WithIssuer(issuer string) *RosterBuilder {
	return b.WithRecord(model.RosterRecord{MatchKey: issuer})
}

// WithRecord adds a record as given.
func (b *RosterBuilder) WithRecord(r model.RosterRecord) *RosterBuilder {
	b.records = append(b.records, r)
	return b
}

// Build returns a copy of the accumulated records.
func (b *RosterBuilder) Build() []model.RosterRecord {
	out := make([]model.RosterRecord, len(b.records))
	copy(out, b.records)
	return out
}
