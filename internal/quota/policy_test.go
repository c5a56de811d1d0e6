package quota_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/quota"
)

type fakeProfiles struct {
	findByUserID func(ctx context.Context, userID string) (*domain.Profile, error)
}

func (f *fakeProfiles) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	return f.findByUserID(ctx, userID)
}

type fakeUsage struct {
	countCreatedSince func(ctx context.Context, userID string, since time.Time) (int, error)
	totalContentBytes func(ctx context.Context, userID string) (int64, error)
}

func (f *fakeUsage) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return f.countCreatedSince(ctx, userID, since)
}

func (f *fakeUsage) TotalContentBytes(ctx context.Context, userID string) (int64, error) {
	return f.totalContentBytes(ctx, userID)
}

var (
	testNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.Local)
	logger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func clock() time.Time { return testNow }

func profileWith(tier domain.Tier, expires *time.Time) *fakeProfiles {
	return &fakeProfiles{findByUserID: func(_ context.Context, userID string) (*domain.Profile, error) {
		return &domain.Profile{UserID: userID, SubscriptionTier: tier, SubscriptionExpiresAt: expires}, nil
	}}
}

func countOf(n int) *fakeUsage {
	return &fakeUsage{
		countCreatedSince: func(context.Context, string, time.Time) (int, error) { return n, nil },
		totalContentBytes: func(context.Context, string) (int64, error) { return 0, nil },
	}
}

func newPolicy(profiles quota.ProfileReader, usage quota.UsageReader) *quota.Policy {
	return quota.NewPolicy(profiles, quota.NewAggregator(usage, logger, clock), logger, clock)
}

func ptr[T any](v T) *T { return &v }

func TestCheckPasteLimits(t *testing.T) {
	yesterday := testNow.Add(-24 * time.Hour)
	nextMonth := testNow.Add(30 * 24 * time.Hour)

	tests := []struct {
		name     string
		profiles *fakeProfiles
		count    int
		size     int
		wantErr  error
		wantMsg  string
	}{
		{
			name:     "free under limits",
			profiles: profileWith(domain.TierFree, nil),
			count:    49,
			size:     100 * 1024,
		},
		{
			name:     "free at daily limit",
			profiles: profileWith(domain.TierFree, nil),
			count:    50,
			size:     1,
			wantErr:  domain.ErrDailyLimitExceeded,
			wantMsg:  "You have reached your daily limit of 50 pastes",
		},
		{
			name:     "free one byte over size",
			profiles: profileWith(domain.TierFree, nil),
			size:     100*1024 + 1,
			wantErr:  domain.ErrSizeExceeded,
			wantMsg:  "Paste size exceeds the maximum limit of 100KB",
		},
		{
			name:     "size checked before count",
			profiles: profileWith(domain.TierFree, nil),
			count:    50,
			size:     150 * 1024,
			wantErr:  domain.ErrSizeExceeded,
		},
		{
			name:     "active supporter with large paste",
			profiles: profileWith(domain.TierSupporter, &nextMonth),
			count:    120,
			size:     150 * 1024,
		},
		{
			name:     "supporter without expiry",
			profiles: profileWith(domain.TierSupporter, nil),
			count:    249,
			size:     250 * 1024,
		},
		{
			name:     "supporter at daily limit",
			profiles: profileWith(domain.TierSupporter, nil),
			count:    250,
			size:     1,
			wantErr:  domain.ErrDailyLimitExceeded,
			wantMsg:  "You have reached your daily limit of 250 pastes",
		},
		{
			name:     "expired supporter gets free size limit",
			profiles: profileWith(domain.TierSupporter, &yesterday),
			size:     150 * 1024,
			wantErr:  domain.ErrSizeExceeded,
			wantMsg:  "Paste size exceeds the maximum limit of 100KB",
		},
		{
			name:     "expired supporter gets free daily limit",
			profiles: profileWith(domain.TierSupporter, &yesterday),
			count:    50,
			size:     10,
			wantErr:  domain.ErrDailyLimitExceeded,
		},
		{
			name: "unreadable profile gets free limits",
			profiles: &fakeProfiles{findByUserID: func(context.Context, string) (*domain.Profile, error) {
				return nil, errors.New("connection refused")
			}},
			size:    150 * 1024,
			wantErr: domain.ErrSizeExceeded,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newPolicy(tc.profiles, countOf(tc.count))

			err := p.CheckPasteLimits(context.Background(), strings.Repeat("a", tc.size), "user-1")
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, err.Error())
			}
		})
	}
}

func TestCheckPasteLimits_AnonymousBypass(t *testing.T) {
	profiles := &fakeProfiles{findByUserID: func(context.Context, string) (*domain.Profile, error) {
		t.Fatal("profile must not be read for anonymous paste")
		return nil, nil
	}}
	usage := &fakeUsage{countCreatedSince: func(context.Context, string, time.Time) (int, error) {
		t.Fatal("usage must not be read for anonymous paste")
		return 0, nil
	}}

	err := newPolicy(profiles, usage).CheckPasteLimits(context.Background(), strings.Repeat("x", 1<<20), "")
	require.NoError(t, err)
}

func TestCheckPasteLimits_MultibyteContentCountsBytes(t *testing.T) {
	// 34134 four-byte runes is 136536 bytes, over 100KB even though it is far
	// fewer characters.
	content := strings.Repeat("😀", 34134)
	err := newPolicy(profileWith(domain.TierFree, nil), countOf(0)).CheckPasteLimits(context.Background(), content, "user-1")
	require.ErrorIs(t, err, domain.ErrSizeExceeded)

	var sizeErr *domain.SizeExceededError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, 100, sizeErr.LimitKB)
	assert.Equal(t, len(content), sizeErr.Size)
}

func TestCheckPasteLimits_CountFailureIsNotAnAllowance(t *testing.T) {
	usage := &fakeUsage{countCreatedSince: func(context.Context, string, time.Time) (int, error) {
		return 0, errors.New("timeout")
	}}

	err := newPolicy(profileWith(domain.TierFree, nil), usage).CheckPasteLimits(context.Background(), "hi", "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDailyLimitExceeded)
}

func TestCheckPasteLimits_CountsSinceLocalMidnight(t *testing.T) {
	var got time.Time
	usage := &fakeUsage{countCreatedSince: func(_ context.Context, _ string, since time.Time) (int, error) {
		got = since
		return 0, nil
	}}

	require.NoError(t, newPolicy(profileWith(domain.TierFree, nil), usage).CheckPasteLimits(context.Background(), "hi", "user-1"))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), got)
}

func TestLimitsFor(t *testing.T) {
	assert.Equal(t, quota.Limits{MaxPasteBytes: 102400, MaxDailyPastes: 50}, quota.LimitsFor(domain.TierFree))
	assert.Equal(t, quota.Limits{MaxPasteBytes: 256000, MaxDailyPastes: 250}, quota.LimitsFor(domain.TierSupporter))
	assert.Equal(t, quota.LimitsFor(domain.TierFree), quota.LimitsFor("PLATINUM"))

	assert.Equal(t, int64(50*102400), quota.LimitsFor(domain.TierFree).MaxTotalStorage())
	assert.Equal(t, int64(250*102400), quota.LimitsFor(domain.TierSupporter).MaxTotalStorage())
}
