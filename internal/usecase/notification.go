package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/email"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
)

type NotificationUsecase struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	profiles      repository.ProfileRepository
	email         email.Sender
	clientURL     string
	logger        *slog.Logger
}

func NewNotificationUsecase(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	emailSender email.Sender,
	clientURL string,
	logger *slog.Logger,
) *NotificationUsecase {
	return &NotificationUsecase{
		notifications: notifications,
		users:         users,
		profiles:      profiles,
		email:         emailSender,
		clientURL:     strings.TrimRight(clientURL, "/"),
		logger:        logger.With("component", "notifier"),
	}
}

// HandleEvent stores a notification for the event's recipient. Self-actions
// and events without a recipient are dropped. Follow notifications are also
// emailed; email failures are logged and do not fail the event.
func (u *NotificationUsecase) HandleEvent(ctx context.Context, event domain.SocialEvent) error {
	if event.RecipientID == "" || event.RecipientID == event.ActorID {
		return nil
	}

	err := u.notifications.Create(ctx, &domain.Notification{
		UserID:    event.RecipientID,
		ActorID:   event.ActorID,
		Type:      event.Type,
		PasteID:   event.PasteID,
		CommentID: event.CommentID,
	})
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(event.Type)).Inc()

	if event.Type == domain.NotificationFollow {
		if err := u.emailFollow(ctx, event); err != nil {
			u.logger.WarnContext(ctx, "email follow notification", "recipient_id", event.RecipientID, "error", err)
		}
	}
	return nil
}

func (u *NotificationUsecase) emailFollow(ctx context.Context, event domain.SocialEvent) error {
	recipient, err := u.users.FindByID(ctx, event.RecipientID)
	if err != nil {
		return fmt.Errorf("find recipient: %w", err)
	}
	actor, err := u.profiles.FindByUserID(ctx, event.ActorID)
	if err != nil {
		return fmt.Errorf("find actor: %w", err)
	}

	return u.email.Send(ctx, email.NewFollower(recipient.Email, actor.Username, u.clientURL+"/u/"+actor.Username))
}

func (u *NotificationUsecase) ListNotifications(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	items, err := u.notifications.ListByUser(ctx, userID, clampLimit(limit, 50, 200))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := u.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (u *NotificationUsecase) MarkRead(ctx context.Context, id, userID string) error {
	if err := u.notifications.MarkRead(ctx, id, userID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := u.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

// PurgeRead deletes read notifications older than retention.
func (u *NotificationUsecase) PurgeRead(ctx context.Context, retention time.Duration) (int, error) {
	n, err := u.notifications.DeleteReadBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("purge read notifications: %w", err)
	}
	return n, nil
}
