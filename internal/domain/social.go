package domain

import (
	"errors"
	"time"
)

var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrInvalidComment       = errors.New("comment must be between 1 and 5000 characters")
	ErrCannotFollowSelf     = errors.New("you cannot follow yourself")
	ErrLikeTarget           = errors.New("exactly one of paste_id or comment_id is required")
	ErrNotificationNotFound = errors.New("notification not found")
)

type Comment struct {
	ID        string
	PasteID   string
	UserID    string
	Username  string
	AvatarURL *string
	Content   string
	CreatedAt time.Time
}

// LikeTarget names the liked object: exactly one of PasteID or CommentID is set.
type LikeTarget struct {
	PasteID   string
	CommentID string
}

type FavoritePaste struct {
	PasteID     string
	Title       string
	CreatedAt   time.Time
	FavoritedAt time.Time
}

type NotificationType string

const (
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationFavorite NotificationType = "favorite"
	NotificationFollow   NotificationType = "follow"
)

type Notification struct {
	ID            string
	UserID        string // recipient
	ActorID       string
	ActorUsername string
	Type          NotificationType
	PasteID       *string
	CommentID     *string
	IsRead        bool
	CreatedAt     time.Time
}

// SocialEvent is published on every like, comment, favorite and follow and
// turned into a Notification for RecipientID by the notifier.
type SocialEvent struct {
	Type        NotificationType `json:"type"`
	ActorID     string           `json:"actor_id"`
	RecipientID string           `json:"recipient_id"`
	PasteID     *string          `json:"paste_id,omitempty"`
	CommentID   *string          `json:"comment_id,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}
