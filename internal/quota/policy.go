package quota

import (
	"context"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/subscription"
)

// ProfileReader is satisfied by the profile repository.
type ProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// Policy decides whether a registered user may create a paste.
//
// The check is read-only and is not tied to the insert that follows it: two
// concurrent creations by the same user can both pass before either is stored.
type Policy struct {
	profiles ProfileReader
	usage    *Aggregator
	logger   *slog.Logger
	now      func() time.Time
}

// NewPolicy returns a policy; a nil now defaults to time.Now.
func NewPolicy(profiles ProfileReader, usage *Aggregator, logger *slog.Logger, now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{
		profiles: profiles,
		usage:    usage,
		logger:   logger.With("component", "quota_policy"),
		now:      now,
	}
}

// EffectiveLimits resolves the user's tier from a fresh profile read. An
// unreadable profile yields FREE limits, never SUPPORTER.
func (p *Policy) EffectiveLimits(ctx context.Context, userID string) (domain.Tier, Limits) {
	profile, err := p.profiles.FindByUserID(ctx, userID)
	if err != nil {
		p.logger.WarnContext(ctx, "read profile for quota, applying free limits", "user_id", userID, "error", err)
		return domain.TierFree, LimitsFor(domain.TierFree)
	}
	tier := subscription.EffectiveTier(subscription.StatusOf(profile), p.now())
	return tier, LimitsFor(tier)
}

// CheckPasteLimits returns nil when the paste may be created. Size is measured
// in encoded bytes and is checked before the daily count. An empty userID is an
// anonymous creation and is always allowed.
func (p *Policy) CheckPasteLimits(ctx context.Context, content string, userID string) error {
	if userID == "" {
		return nil
	}

	_, limits := p.EffectiveLimits(ctx, userID)

	if size := len(content); size > limits.MaxPasteBytes {
		return &domain.SizeExceededError{LimitKB: limits.MaxPasteKB(), Size: size}
	}

	count, err := p.usage.DailyCount(ctx, userID)
	if err != nil {
		return err
	}
	if count >= limits.MaxDailyPastes {
		return &domain.DailyLimitExceededError{Limit: limits.MaxDailyPastes}
	}

	return nil
}
