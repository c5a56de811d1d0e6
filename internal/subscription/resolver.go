// Package subscription derives the effective tier of a profile.
//
// The stored subscription_tier label is not authoritative: webhooks from the
// payment processor arrive asynchronously and labels may outlive their expiry.
// Callers must re-evaluate on every read of the profile and never cache the
// result beyond the lifetime of a single request.
package subscription

import (
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
)

// Status is the subset of a profile the resolver reads.
type Status struct {
	Tier      domain.Tier
	ExpiresAt *time.Time
}

// StatusOf extracts the billing status from a profile.
func StatusOf(p *domain.Profile) Status {
	if p == nil {
		return Status{Tier: domain.TierFree}
	}
	return Status{Tier: p.SubscriptionTier, ExpiresAt: p.SubscriptionExpiresAt}
}

// IsEffectiveSupporter reports whether status grants supporter limits at now:
// the tier is SUPPORTER and the expiry is either unset or strictly after now.
func IsEffectiveSupporter(status Status, now time.Time) bool {
	if status.Tier != domain.TierSupporter {
		return false
	}
	return status.ExpiresAt == nil || status.ExpiresAt.After(now)
}

// EffectiveTier maps status onto the tier whose limits apply at now.
// Unknown labels resolve to FREE.
func EffectiveTier(status Status, now time.Time) domain.Tier {
	if IsEffectiveSupporter(status, now) {
		return domain.TierSupporter
	}
	return domain.TierFree
}
