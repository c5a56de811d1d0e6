package domain

import (
	"errors"
	"time"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUsernameTaken    = errors.New("username is already taken")
	ErrInvalidUsername  = errors.New("username must be 3-30 letters, digits or underscores")
	ErrNoSubscription   = errors.New("user does not have an active subscription")
	ErrAvatarsDisabled  = errors.New("avatar storage is not configured")
	ErrInvalidAvatar    = errors.New("avatar must be a png, jpeg, gif or webp image")
	ErrCheckoutDisabled = errors.New("payments are not configured")
	ErrInvalidPlan      = errors.New("interval must be monthly or yearly")
	ErrSessionMismatch  = errors.New("checkout session belongs to another user")
)

type Tier string

const (
	TierFree      Tier = "FREE"
	TierSupporter Tier = "SUPPORTER"
)

type Profile struct {
	UserID    string
	Username  string
	Bio       string
	AvatarURL *string

	SubscriptionTier      Tier
	SubscriptionExpiresAt *time.Time // nil means no expiry
	StripeCustomerID      *string
	StripeSubscriptionID  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionUpdate is the set of billing fields written by checkout, cancel and webhooks.
type SubscriptionUpdate struct {
	Tier           Tier
	ExpiresAt      *time.Time
	SubscriptionID *string // nil leaves the stored id unchanged
}

type PublicProfile struct {
	Profile
	Followers   int
	Following   int
	IsSupporter bool
}
