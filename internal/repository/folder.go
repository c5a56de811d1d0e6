package repository

import (
	"context"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
)

type FolderRepository interface {
	Create(ctx context.Context, userID, name string) (*domain.Folder, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Folder, error)
	List(ctx context.Context, userID string) ([]*domain.Folder, error)
	Rename(ctx context.Context, id, userID, name string) (*domain.Folder, error)
	// Delete moves the folder's pastes and drafts to no folder and removes it, atomically.
	Delete(ctx context.Context, id, userID string) error
}

type DraftRepository interface {
	// Upsert inserts when draft.ID is empty, otherwise updates the caller's draft.
	Upsert(ctx context.Context, draft *domain.Draft) (*domain.Draft, error)
	List(ctx context.Context, userID string) ([]*domain.Draft, error)
	Delete(ctx context.Context, id, userID string) error
}
