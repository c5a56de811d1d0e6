package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

const metadataUserID = "user_id"

type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	return &StripeProvider{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, userID, email string) (string, error) {
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	params.AddMetadata(metadataUserID, userID)

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return c.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(input.CustomerID),
		ClientReferenceID: stripe.String(input.UserID),
		SuccessURL:        stripe.String(input.SuccessURL),
		CancelURL:         stripe.String(input.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(input.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserID: input.UserID},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, input.UserID)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}
	return s.URL, nil
}

func (p *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session: %w", err)
	}

	out := &Session{ID: s.ID, UserID: s.ClientReferenceID}
	if out.UserID == "" {
		out.UserID = s.Metadata[metadataUserID]
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
		if s.Subscription.CurrentPeriodEnd > 0 {
			end := time.Unix(s.Subscription.CurrentPeriodEnd, 0).UTC()
			out.PeriodEnd = &end
		}
	}
	return out, nil
}

func (p *StripeProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (time.Time, error) {
	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return time.Time{}, fmt.Errorf("stripe cancel subscription: %w", err)
	}
	return time.Unix(sub.CurrentPeriodEnd, 0).UTC(), nil
}

func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (*Event, error) {
	return parseWebhook(payload, signature, p.webhookSecret)
}

func parseWebhook(payload []byte, signature, secret string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if !strings.HasPrefix(out.Type, "customer.subscription.") {
		return out, nil
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}

	out.Subscription = &Subscription{
		ID:               sub.ID,
		Status:           string(sub.Status),
		UserID:           sub.Metadata[metadataUserID],
		CurrentPeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}
	if sub.Customer != nil {
		out.Subscription.CustomerID = sub.Customer.ID
	}
	return out, nil
}
