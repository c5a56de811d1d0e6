package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
)

type FolderUsecase struct {
	folders repository.FolderRepository
}

func NewFolderUsecase(folders repository.FolderRepository) *FolderUsecase {
	return &FolderUsecase{folders: folders}
}

func (u *FolderUsecase) ListFolders(ctx context.Context, userID string) ([]*domain.Folder, error) {
	folders, err := u.folders.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (u *FolderUsecase) CreateFolder(ctx context.Context, userID, name string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyFolderName
	}
	f, err := u.folders.Create(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return f, nil
}

func (u *FolderUsecase) RenameFolder(ctx context.Context, id, userID, name string) (*domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyFolderName
	}
	f, err := u.folders.Rename(ctx, id, userID, name)
	if err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}
	return f, nil
}

// DeleteFolder removes the folder; its pastes stay, with no folder.
func (u *FolderUsecase) DeleteFolder(ctx context.Context, id, userID string) error {
	if err := u.folders.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}
