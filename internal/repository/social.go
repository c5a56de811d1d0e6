package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
)

type CommentRepository interface {
	ListByPaste(ctx context.Context, pasteID string) ([]*domain.Comment, error)
	Create(ctx context.Context, pasteID, userID, content string) (*domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Delete(ctx context.Context, id, userID string) error
}

// Toggle methods return the state after the call: true means the row now exists.

type LikeRepository interface {
	Toggle(ctx context.Context, userID string, target domain.LikeTarget) (bool, error)
	Count(ctx context.Context, target domain.LikeTarget) (int, error)
	IsLiked(ctx context.Context, userID string, target domain.LikeTarget) (bool, error)
}

type FavoriteRepository interface {
	Toggle(ctx context.Context, userID, pasteID string) (bool, error)
	Count(ctx context.Context, pasteID string) (int, error)
	IsFavorited(ctx context.Context, userID, pasteID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.FavoritePaste, error)
}

type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	Counts(ctx context.Context, userID string) (followers, following int, err error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int, error)
}
