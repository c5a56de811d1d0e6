package usecase

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
)

type DraftUsecase struct {
	drafts  repository.DraftRepository
	folders repository.FolderRepository
}

func NewDraftUsecase(drafts repository.DraftRepository, folders repository.FolderRepository) *DraftUsecase {
	return &DraftUsecase{drafts: drafts, folders: folders}
}

type SaveDraftInput struct {
	ID       string // empty creates a new draft
	UserID   string
	Title    string
	Content  string
	IsPublic bool
	FolderID *string
}

func (u *DraftUsecase) SaveDraft(ctx context.Context, input SaveDraftInput) (*domain.Draft, error) {
	if input.FolderID != nil {
		if _, err := u.folders.GetByID(ctx, *input.FolderID, input.UserID); err != nil {
			return nil, fmt.Errorf("check folder: %w", err)
		}
	}

	d, err := u.drafts.Upsert(ctx, &domain.Draft{
		ID:       input.ID,
		UserID:   input.UserID,
		Title:    input.Title,
		Content:  input.Content,
		IsPublic: input.IsPublic,
		FolderID: input.FolderID,
	})
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return d, nil
}

func (u *DraftUsecase) ListDrafts(ctx context.Context, userID string) ([]*domain.Draft, error) {
	drafts, err := u.drafts.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

func (u *DraftUsecase) DeleteDraft(ctx context.Context, id, userID string) error {
	if err := u.drafts.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
