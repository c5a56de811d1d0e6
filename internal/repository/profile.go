package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
)

// UpdateProfileInput carries optional settings; nil fields are left unchanged.
type UpdateProfileInput struct {
	Username *string
	Bio      *string
}

type ProfileRepository interface {
	// Ensure creates a FREE profile with username if none exists and returns the stored one.
	Ensure(ctx context.Context, userID, username string) (*domain.Profile, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	// FindByUsername matches case-insensitively.
	FindByUsername(ctx context.Context, username string) (*domain.Profile, error)
	UpdateSettings(ctx context.Context, userID string, input UpdateProfileInput) (*domain.Profile, error)
	SetAvatarURL(ctx context.Context, userID, url string) error

	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	UpdateSubscription(ctx context.Context, userID string, update domain.SubscriptionUpdate) error

	// DowngradeExpired rewrites stored SUPPORTER labels whose expiry passed before now.
	DowngradeExpired(ctx context.Context, now time.Time) (int, error)
}
