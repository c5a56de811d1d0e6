package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/ErlanBelekov/rich-pastebin/internal/payment"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
	"github.com/ErlanBelekov/rich-pastebin/internal/subscription"
)

// Used by Confirm when the session does not expose a period end.
const defaultSupporterPeriod = 30 * 24 * time.Hour

var ErrMissingUserMetadata = errors.New("no user_id in subscription metadata")

type Prices struct {
	Monthly string
	Yearly  string
}

type BillingUsecase struct {
	profiles  repository.ProfileRepository
	users     repository.UserRepository
	provider  payment.Provider // nil when payments are not configured
	prices    Prices
	clientURL string
	logger    *slog.Logger
	now       func() time.Time
}

func NewBillingUsecase(
	profiles repository.ProfileRepository,
	users repository.UserRepository,
	provider payment.Provider,
	prices Prices,
	clientURL string,
	logger *slog.Logger,
) *BillingUsecase {
	return &BillingUsecase{
		profiles:  profiles,
		users:     users,
		provider:  provider,
		prices:    prices,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger.With("component", "billing"),
		now:       time.Now,
	}
}

func (u *BillingUsecase) priceFor(interval string) (string, error) {
	switch interval {
	case "monthly":
		return u.prices.Monthly, nil
	case "yearly":
		return u.prices.Yearly, nil
	default:
		return "", domain.ErrInvalidPlan
	}
}

// Checkout returns the hosted checkout URL. The processor customer is
// created on the first checkout and reused afterwards.
func (u *BillingUsecase) Checkout(ctx context.Context, userID, interval string) (string, error) {
	if u.provider == nil {
		return "", domain.ErrCheckoutDisabled
	}
	priceID, err := u.priceFor(interval)
	if err != nil {
		return "", err
	}

	profile, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}

	var customerID string
	if profile.StripeCustomerID != nil {
		customerID = *profile.StripeCustomerID
	} else {
		user, err := u.users.FindByID(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("get user: %w", err)
		}
		if customerID, err = u.provider.CreateCustomer(ctx, userID, user.Email); err != nil {
			return "", fmt.Errorf("create customer: %w", err)
		}
		if err := u.profiles.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return "", fmt.Errorf("save customer id: %w", err)
		}
	}

	url, err := u.provider.CreateCheckoutSession(ctx, payment.CheckoutInput{
		UserID:     userID,
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: u.clientURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  u.clientURL + "/cancel",
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return url, nil
}

// Cancel stops renewal at the end of the paid period and records the
// downgrade with that period end as expiry.
func (u *BillingUsecase) Cancel(ctx context.Context, userID string) (time.Time, error) {
	if u.provider == nil {
		return time.Time{}, domain.ErrCheckoutDisabled
	}

	profile, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("get profile: %w", err)
	}
	if profile.StripeSubscriptionID == nil || *profile.StripeSubscriptionID == "" {
		return time.Time{}, domain.ErrNoSubscription
	}

	periodEnd, err := u.provider.CancelAtPeriodEnd(ctx, *profile.StripeSubscriptionID)
	if err != nil {
		return time.Time{}, fmt.Errorf("cancel subscription: %w", err)
	}

	err = u.profiles.UpdateSubscription(ctx, userID, domain.SubscriptionUpdate{
		Tier:      domain.TierFree,
		ExpiresAt: &periodEnd,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("record cancellation: %w", err)
	}
	return periodEnd, nil
}

// HandleWebhook verifies and applies a processor event. An invalid signature
// returns an error wrapping payment.ErrInvalidSignature before any write.
func (u *BillingUsecase) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if u.provider == nil {
		return domain.ErrCheckoutDisabled
	}

	event, err := u.provider.ParseWebhook(payload, signature)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		return fmt.Errorf("parse webhook: %w", err)
	}

	err = u.applyEvent(ctx, event)
	outcome := "applied"
	switch {
	case errors.Is(err, errIgnoredEvent):
		outcome, err = "ignored", nil
	case err != nil:
		outcome = "failed"
	}
	metrics.WebhookEventsTotal.WithLabelValues(event.Type, outcome).Inc()
	return err
}

var errIgnoredEvent = errors.New("ignored event")

func (u *BillingUsecase) applyEvent(ctx context.Context, event *payment.Event) error {
	var update domain.SubscriptionUpdate
	if event.Subscription == nil {
		return errIgnoredEvent
	}

	switch event.Type {
	case payment.EventSubscriptionCreated, payment.EventSubscriptionUpdated:
		sub := event.Subscription
		if sub.UserID == "" {
			return ErrMissingUserMetadata
		}
		tier := domain.TierFree
		if sub.Status == payment.StatusActive {
			tier = domain.TierSupporter
		}
		end := sub.CurrentPeriodEnd
		update = domain.SubscriptionUpdate{Tier: tier, ExpiresAt: &end, SubscriptionID: &sub.ID}

	case payment.EventSubscriptionDeleted:
		if event.Subscription.UserID == "" {
			return ErrMissingUserMetadata
		}
		update = domain.SubscriptionUpdate{Tier: domain.TierFree}

	default:
		return errIgnoredEvent
	}

	if err := u.profiles.UpdateSubscription(ctx, event.Subscription.UserID, update); err != nil {
		return fmt.Errorf("apply %s: %w", event.Type, err)
	}
	u.logger.InfoContext(ctx, "subscription updated",
		"event_id", event.ID, "type", event.Type, "user_id", event.Subscription.UserID, "tier", update.Tier)
	return nil
}

type SubscriptionInfo struct {
	Tier        domain.Tier
	ExpiresAt   *time.Time
	IsSupporter bool
}

func (u *BillingUsecase) Subscription(ctx context.Context, userID string) (SubscriptionInfo, error) {
	profile, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return SubscriptionInfo{}, fmt.Errorf("get profile: %w", err)
	}
	status := subscription.StatusOf(profile)
	return SubscriptionInfo{
		Tier:        status.Tier,
		ExpiresAt:   status.ExpiresAt,
		IsSupporter: subscription.IsEffectiveSupporter(status, u.now()),
	}, nil
}

// Confirm marks the caller SUPPORTER after a completed checkout, ahead of the
// webhook. The session must reference the caller.
func (u *BillingUsecase) Confirm(ctx context.Context, userID, sessionID string) (SubscriptionInfo, error) {
	if u.provider == nil {
		return SubscriptionInfo{}, domain.ErrCheckoutDisabled
	}

	session, err := u.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return SubscriptionInfo{}, fmt.Errorf("get checkout session: %w", err)
	}
	if session.UserID != userID {
		return SubscriptionInfo{}, domain.ErrSessionMismatch
	}

	expires := u.now().Add(defaultSupporterPeriod)
	if session.PeriodEnd != nil {
		expires = *session.PeriodEnd
	}
	update := domain.SubscriptionUpdate{Tier: domain.TierSupporter, ExpiresAt: &expires}
	if session.SubscriptionID != "" {
		update.SubscriptionID = &session.SubscriptionID
	}

	if err := u.profiles.UpdateSubscription(ctx, userID, update); err != nil {
		return SubscriptionInfo{}, fmt.Errorf("confirm subscription: %w", err)
	}
	return SubscriptionInfo{
		Tier:        domain.TierSupporter,
		ExpiresAt:   &expires,
		IsSupporter: expires.After(u.now()),
	}, nil
}
