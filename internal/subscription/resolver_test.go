package subscription_test

import (
	"testing"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/subscription"
	"github.com/stretchr/testify/assert"
)

func ptr(t time.Time) *time.Time { return &t }

func TestIsEffectiveSupporter(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status subscription.Status
		want   bool
	}{
		{"supporter without expiry", subscription.Status{Tier: domain.TierSupporter}, true},
		{"supporter expiring tomorrow", subscription.Status{Tier: domain.TierSupporter, ExpiresAt: ptr(now.Add(24 * time.Hour))}, true},
		{"supporter expired yesterday", subscription.Status{Tier: domain.TierSupporter, ExpiresAt: ptr(now.Add(-24 * time.Hour))}, false},
		{"supporter expiring exactly now", subscription.Status{Tier: domain.TierSupporter, ExpiresAt: ptr(now)}, false},
		{"free without expiry", subscription.Status{Tier: domain.TierFree}, false},
		{"free with future expiry", subscription.Status{Tier: domain.TierFree, ExpiresAt: ptr(now.Add(time.Hour))}, false},
		{"unknown label", subscription.Status{Tier: "GOLD"}, false},
		{"empty label", subscription.Status{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subscription.IsEffectiveSupporter(tt.status, now))
		})
	}
}

func TestIsEffectiveSupporter_Idempotent(t *testing.T) {
	now := time.Now()
	status := subscription.Status{Tier: domain.TierSupporter, ExpiresAt: ptr(now.Add(time.Minute))}

	first := subscription.IsEffectiveSupporter(status, now)
	second := subscription.IsEffectiveSupporter(status, now)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.TierSupporter, status.Tier, "status must not be mutated")
}

func TestEffectiveTier_ExpiredSupporterRevertsToFree(t *testing.T) {
	now := time.Now()
	status := subscription.Status{Tier: domain.TierSupporter, ExpiresAt: ptr(now.Add(-time.Second))}

	assert.Equal(t, domain.TierFree, subscription.EffectiveTier(status, now))
}

func TestStatusOf_NilProfileIsFree(t *testing.T) {
	assert.Equal(t, domain.TierFree, subscription.StatusOf(nil).Tier)
}
