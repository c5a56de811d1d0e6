// Package quota enforces per-tier paste limits and aggregates usage.
package quota

import (
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
)

const kb = 1024

// Limits is one row of the tier table.
type Limits struct {
	MaxPasteBytes  int
	MaxDailyPastes int
}

var limitsByTier = map[domain.Tier]Limits{
	domain.TierFree:      {MaxPasteBytes: 100 * kb, MaxDailyPastes: 50},
	domain.TierSupporter: {MaxPasteBytes: 250 * kb, MaxDailyPastes: 250},
}

// LimitsFor returns the limits of tier, defaulting to FREE for unknown tiers.
func LimitsFor(tier domain.Tier) Limits {
	if l, ok := limitsByTier[tier]; ok {
		return l
	}
	return limitsByTier[domain.TierFree]
}

// MaxPasteKB is the paste size limit as shown to users.
func (l Limits) MaxPasteKB() int { return l.MaxPasteBytes / kb }

// MaxTotalStorage is a display value only; total storage is never enforced.
func (l Limits) MaxTotalStorage() int64 {
	return int64(l.MaxDailyPastes) * 100 * kb
}

// StartOfDay returns 00:00:00 of t's calendar day in t's own location.
// With time.Now() that is the process's local zone, not UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
