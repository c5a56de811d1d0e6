package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
)

type ListPastesInput struct {
	UserID     string
	FolderID   *string    // nil = all folders
	CursorTime *time.Time // cursor on (created_at DESC, id DESC)
	CursorID   string
	Limit      int
}

type PublicSort string

const (
	SortByCreatedAt PublicSort = "created_at"
	SortByViews     PublicSort = "views"
)

type ListPublicPastesInput struct {
	UserID    string
	SortBy    PublicSort
	Ascending bool
	Offset    int
	Limit     int
}

// UpdatePasteInput carries optional fields; nil fields are left unchanged.
// Making a paste public clears its password.
type UpdatePasteInput struct {
	Title       *string
	Content     *string
	IsPublic    *bool
	FolderID    *string
	ClearFolder bool
}

type PasteRepository interface {
	Create(ctx context.Context, paste *domain.Paste) (*domain.Paste, error)
	GetByID(ctx context.Context, id string) (*domain.Paste, error)
	Update(ctx context.Context, id, userID string, input UpdatePasteInput) (*domain.Paste, error)
	Delete(ctx context.Context, id, userID string) error

	ListByUser(ctx context.Context, input ListPastesInput) ([]*domain.Paste, error)
	SearchByTitle(ctx context.Context, userID, query string, limit int) ([]*domain.Paste, error)
	// ListPublicByUser returns one page of unexpired public pastes and the total count.
	ListPublicByUser(ctx context.Context, input ListPublicPastesInput) ([]*domain.Paste, int, error)

	IncrementViews(ctx context.Context, id string) error

	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
	TotalContentBytes(ctx context.Context, userID string) (int64, error)
}
