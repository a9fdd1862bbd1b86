package model

// GroupID identifies a store or location that payment lines belong to.
type GroupID string

// LedgerEntry is one payment instruction parsed from a message line.
type LedgerEntry struct {
	Group      GroupID
	PayeeLabel string // As written in the message, may be non-ASCII
	Amount     int
}
