// Package payment wraps the payment processor behind a small interface.
package payment

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Event types the billing flow reacts to. Anything else is acknowledged and ignored.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"

	StatusActive = "active"
)

type CheckoutInput struct {
	UserID     string
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

type Subscription struct {
	ID               string
	Status           string
	CustomerID       string
	UserID           string // from metadata.user_id; empty when missing
	CurrentPeriodEnd time.Time
}

// Event is a verified webhook event. Subscription is set for subscription events.
type Event struct {
	ID           string
	Type         string
	Subscription *Subscription
}

type Session struct {
	ID             string
	UserID         string // client_reference_id, falling back to metadata.user_id
	SubscriptionID string
	PeriodEnd      *time.Time
}

type Provider interface {
	CreateCustomer(ctx context.Context, userID, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error)
	// CancelAtPeriodEnd returns the end of the paid period.
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error)
	// ParseWebhook verifies the signature over the raw payload before decoding it.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
