package model

// RosterRecord holds the personal details used to fill a receipt.
// MatchKey is the latin form of the payee's display name as stored in the roster.
type RosterRecord struct {
	MatchKey  string
	LegalName string
	Address   string
	Phone     string
	Birthdate string
}
