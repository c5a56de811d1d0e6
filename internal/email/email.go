// Package email delivers transactional mail: sign-in links and follow
// notifications.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/resend/resend-go/v2"
)

// Categories tag outgoing mail in Resend and in the sent-email metric.
const (
	CategoryMagicLink = "magic_link"
	CategoryFollow    = "follow"
)

type Message struct {
	To       string
	Subject  string
	HTML     string
	Category string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs emails instead of sending them. Used in ENV=local, where the
// magic link is read from the server log.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "email")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email (local dev)",
		"to", msg.To, "category", msg.Category, "subject", msg.Subject, "body", msg.HTML)
	metrics.EmailsSentTotal.WithLabelValues(msg.Category, "logged").Inc()
	return nil
}

// ResendSender sends emails via the Resend API. Used in staging and production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.Category != "" {
		params.Tags = []resend.Tag{{Name: "category", Value: msg.Category}}
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(msg.Category, "error").Inc()
		return fmt.Errorf("send %s email: %w", msg.Category, err)
	}
	metrics.EmailsSentTotal.WithLabelValues(msg.Category, "sent").Inc()
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return NewLogSender(logger)
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
