// Package events carries social events from the API to the notifier.
package events

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
)

type Publisher interface {
	Publish(ctx context.Context, event domain.SocialEvent) error
}

// Handler processes one event. A returned error requeues the event when the
// transport supports it.
type Handler func(ctx context.Context, event domain.SocialEvent) error

// InlinePublisher hands events straight to a handler in the calling
// goroutine. Used when no broker is configured.
type InlinePublisher struct {
	handler Handler
	logger  *slog.Logger
}

func NewInlinePublisher(handler Handler, logger *slog.Logger) *InlinePublisher {
	return &InlinePublisher{handler: handler, logger: logger.With("component", "inline_publisher")}
}

func (p *InlinePublisher) Publish(ctx context.Context, event domain.SocialEvent) error {
	if err := p.handler(ctx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}

func routingKey(t domain.NotificationType) string {
	return "social." + string(t)
}
