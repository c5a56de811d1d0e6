package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// UsageReader is satisfied by the paste repository.
type UsageReader interface {
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
	TotalContentBytes(ctx context.Context, userID string) (int64, error)
}

// Snapshot is recomputed on every call and never persisted.
type Snapshot struct {
	DailyPasteCount   int
	TotalStorageBytes int64
	// Known is false when the snapshot could not be read; zero values then mean
	// "unknown", not "empty".
	Known bool
}

type Aggregator struct {
	pastes UsageReader
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator returns an aggregator; a nil now defaults to time.Now.
func NewAggregator(pastes UsageReader, logger *slog.Logger, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		pastes: pastes,
		logger: logger.With("component", "usage_aggregator"),
		now:    now,
	}
}

// DailyCount counts the user's pastes created since local midnight.
func (a *Aggregator) DailyCount(ctx context.Context, userID string) (int, error) {
	count, err := a.pastes.CountCreatedSince(ctx, userID, StartOfDay(a.now()))
	if err != nil {
		return 0, fmt.Errorf("count daily pastes: %w", err)
	}
	return count, nil
}

// Usage returns the daily count and the all-time stored bytes, or the first read error.
func (a *Aggregator) Usage(ctx context.Context, userID string) (Snapshot, error) {
	daily, err := a.DailyCount(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	total, err := a.pastes.TotalContentBytes(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sum content bytes: %w", err)
	}

	return Snapshot{DailyPasteCount: daily, TotalStorageBytes: total, Known: true}, nil
}

// DailyUsageStats never fails: read errors are logged and a zero snapshot with
// Known=false is returned. Do not deny actions based on it.
func (a *Aggregator) DailyUsageStats(ctx context.Context, userID string) Snapshot {
	s, err := a.Usage(ctx, userID)
	if err != nil {
		a.logger.ErrorContext(ctx, "get usage stats", "user_id", userID, "error", err)
		return Snapshot{}
	}
	return s
}
