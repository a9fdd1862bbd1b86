// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
)

// RosterLookup resolves a normalized payee key to a roster record.
// Implementations return common.ErrNotFound when no record matches.
type RosterLookup interface {
	Lookup(ctx context.Context, matchKey string) (*model.RosterRecord, error)
}

// RosterSource produces a lookup over the whole roster.
// An error means the roster could not be obtained at all.
type RosterSource interface {
	LoadRoster(ctx context.Context) (RosterLookup, error)
}

// ReceiptRenderer writes a receipt document and reports where it landed.
type ReceiptRenderer interface {
	Render(spec model.ReceiptSpec) (model.ReceiptArtifact, error)
}

// RetryOptions configures retry behavior for external calls.
type RetryOptions struct {
	Operation    string // Name used in retry logs
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
