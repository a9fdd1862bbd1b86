package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/model"
	"github.com/Veraticus/the-receipts-must-flow/internal/service"
)

// RecordSource fetches the full roster from its system of record.
type RecordSource interface {
	FetchRecords(ctx context.Context) ([]model.RosterRecord, error)
}

// Cache keeps the last roster that was fetched successfully.
type Cache interface {
	ReplaceRoster(ctx context.Context, records []model.RosterRecord) error
	LoadRoster(ctx context.Context) (service.RosterLookup, error)
}

// CachedSource reads the upstream roster and refreshes the cache with it.
// When the upstream cannot be reached the cached copy is served instead.
type CachedSource struct {
	Upstream RecordSource
	Cache    Cache
	Logger   *slog.Logger
}

// LoadRoster implements service.RosterSource.
func (c *CachedSource) LoadRoster(ctx context.Context) (service.RosterLookup, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	records, err := c.Upstream.FetchRecords(ctx)
	if err != nil {
		logger.Warn("roster upstream failed, using cached roster", "error", err)

		lookup, cacheErr := c.Cache.LoadRoster(ctx)
		if cacheErr != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrRosterUnavailable, errors.Join(err, cacheErr))
		}
		return lookup, nil
	}

	if err := c.Cache.ReplaceRoster(ctx, records); err != nil {
		logger.Warn("failed to refresh roster cache", "error", err)
	}

	return NewTable(records), nil
}

// Sync copies the upstream roster into the cache and returns the record count.
func Sync(ctx context.Context, upstream RecordSource, cache Cache) (int, error) {
	records, err := upstream.FetchRecords(ctx)
	if err != nil {
		return 0, err
	}
	if err := cache.ReplaceRoster(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store roster: %w", err)
	}
	return len(records), nil
}
