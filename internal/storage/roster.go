package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/roster"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
)

// ReplaceRoster swaps the cached roster for records in one transaction.
// When two records normalize to the same key the first one is kept.
func (s *SQLiteStorage) ReplaceRoster(ctx context.Context, records []model.RosterRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRosterRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM roster`); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO roster (match_key, display_key, legal_name, address, phone, birthdate, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare roster insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			roster.NormalizeKey(r.MatchKey),
			r.MatchKey,
			r.LegalName,
			r.Address,
			r.Phone,
			r.Birthdate,
			i,
		); err != nil {
			return fmt.Errorf("failed to insert roster record %q: %w", r.MatchKey, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO roster_sync (id, record_count, synced_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET record_count = excluded.record_count, synced_at = excluded.synced_at
	`, len(records), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record roster sync: %w", err)
	}

	return tx.Commit()
}

// Lookup implements service.RosterLookup against the cached roster.
func (s *SQLiteStorage) Lookup(ctx context.Context, matchKey string) (*model.RosterRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRosterRecordTx(ctx, s.db, roster.NormalizeKey(matchKey))
}

func (s *SQLiteStorage) getRosterRecordTx(ctx context.Context, q queryable, key string) (*model.RosterRecord, error) {
	var r model.RosterRecord
	err := q.QueryRowContext(ctx, `
		SELECT display_key, legal_name, address, phone, birthdate
		FROM roster
		WHERE match_key = ?
	`, key).Scan(&r.MatchKey, &r.LegalName, &r.Address, &r.Phone, &r.Birthdate)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster record: %w", err)
	}
	return &r, nil
}

// ListRoster returns the cached roster in its original order.
func (s *SQLiteStorage) ListRoster(ctx context.Context) ([]model.RosterRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT display_key, legal_name, address, phone, birthdate
		FROM roster
		ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.RosterRecord
	for rows.Next() {
		var r model.RosterRecord
		if err := rows.Scan(&r.MatchKey, &r.LegalName, &r.Address, &r.Phone, &r.Birthdate); err != nil {
			return nil, fmt.Errorf("failed to scan roster record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RosterSyncInfo reports when the cache was last refreshed.
type RosterSyncInfo struct {
	SyncedAt    time.Time
	RecordCount int
}

// LastRosterSync returns the latest sync details, or common.ErrNotFound if none.
func (s *SQLiteStorage) LastRosterSync(ctx context.Context) (*RosterSyncInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var info RosterSyncInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT record_count, synced_at FROM roster_sync WHERE id = 1
	`).Scan(&info.RecordCount, &info.SyncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster sync: %w", err)
	}
	return &info, nil
}

// LoadRoster implements service.RosterSource. An empty cache is an error
// because no entry could be resolved against it.
func (s *SQLiteStorage) LoadRoster(ctx context.Context) (service.RosterLookup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM roster`).Scan(&count); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrRosterUnavailable, err)
	}
	if count == 0 {
		return nil, common.ErrRosterEmpty
	}
	return s, nil
}
