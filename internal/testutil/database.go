// Package testutil provides shared fixtures for roster-backed tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/storage"
)

// SetupRosterDB creates a migrated in-memory roster cache seeded with records.
// It is closed automatically when the test ends.
func SetupRosterDB(t *testing.T, records []model.RosterRecord) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if records != nil {
		if err := store.ReplaceRoster(ctx, records); err != nil {
			t.Fatalf("failed to seed roster: %v", err)
		}
	}

	return store
}
