package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const searchLimit = 10

// Accepted values of expires_in_hours.
var allowedExpiryHours = map[int]bool{1: true, 24: true, 168: true, 720: true}

type limitChecker interface {
	CheckPasteLimits(ctx context.Context, content string, userID string) error
}

type viewCounter interface {
	Increment(ctx context.Context, pasteID string)
}

type PasteUsecase struct {
	pastes   repository.PasteRepository
	folders  repository.FolderRepository
	drafts   repository.DraftRepository
	profiles repository.ProfileRepository
	limits   limitChecker
	views    viewCounter
	logger   *slog.Logger
	now      func() time.Time
}

func NewPasteUsecase(
	pastes repository.PasteRepository,
	folders repository.FolderRepository,
	drafts repository.DraftRepository,
	profiles repository.ProfileRepository,
	limits limitChecker,
	views viewCounter,
	logger *slog.Logger,
) *PasteUsecase {
	return &PasteUsecase{
		pastes:   pastes,
		folders:  folders,
		drafts:   drafts,
		profiles: profiles,
		limits:   limits,
		views:    views,
		logger:   logger.With("component", "paste_usecase"),
		now:      time.Now,
	}
}

type CreatePasteInput struct {
	UserID         string // empty for anonymous
	Title          string
	Content        string
	FolderID       *string
	IsPublic       bool
	Password       string
	ExpiresInHours int
	DraftID        string
}

func (u *PasteUsecase) CreatePaste(ctx context.Context, input CreatePasteInput) (*domain.Paste, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, domain.ErrEmptyContent
	}

	if err := u.limits.CheckPasteLimits(ctx, input.Content, input.UserID); err != nil {
		switch {
		case errors.Is(err, domain.ErrSizeExceeded):
			metrics.QuotaDeniedTotal.WithLabelValues("size").Inc()
		case errors.Is(err, domain.ErrDailyLimitExceeded):
			metrics.QuotaDeniedTotal.WithLabelValues("daily").Inc()
		}
		return nil, fmt.Errorf("check paste limits: %w", err)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = domain.DefaultPasteTitle
	}

	paste := &domain.Paste{
		Title:    title,
		Content:  input.Content,
		IsPublic: input.IsPublic,
	}

	if input.UserID == "" {
		// Anonymous pastes have no owner who could read them back privately.
		paste.IsPublic = true
	} else {
		paste.UserID = &input.UserID
		if input.FolderID != nil {
			if _, err := u.folders.GetByID(ctx, *input.FolderID, input.UserID); err != nil {
				return nil, fmt.Errorf("check folder: %w", err)
			}
			paste.FolderID = input.FolderID
		}
	}

	if input.Password != "" {
		if paste.IsPublic {
			return nil, domain.ErrPasswordForPublic
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		paste.PasswordHash = &h
	}

	if input.ExpiresInHours != 0 {
		if !allowedExpiryHours[input.ExpiresInHours] {
			return nil, domain.ErrInvalidExpiry
		}
		exp := u.now().Add(time.Duration(input.ExpiresInHours) * time.Hour)
		paste.ExpiresAt = &exp
	}

	created, err := u.pastes.Create(ctx, paste)
	if err != nil {
		return nil, fmt.Errorf("create paste: %w", err)
	}

	owner := "user"
	if input.UserID == "" {
		owner = "anonymous"
	}
	metrics.PastesCreatedTotal.WithLabelValues(owner).Inc()

	if input.DraftID != "" && input.UserID != "" {
		if err := u.drafts.Delete(ctx, input.DraftID, input.UserID); err != nil && !errors.Is(err, domain.ErrDraftNotFound) {
			u.logger.WarnContext(ctx, "delete draft after publish", "draft_id", input.DraftID, "error", err)
		}
	}

	return created, nil
}

// GetPaste returns a paste the viewer may read and counts the view.
func (u *PasteUsecase) GetPaste(ctx context.Context, id, viewerID string) (*domain.Paste, error) {
	p, err := u.readable(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	u.views.Increment(ctx, p.ID)
	return p, nil
}

// UnlockPaste returns a password-protected paste when password matches.
func (u *PasteUsecase) UnlockPaste(ctx context.Context, id, viewerID, password string) (*domain.Paste, error) {
	p, err := u.readable(ctx, id, viewerID)
	if err == nil {
		u.views.Increment(ctx, p.ID)
		return p, nil
	}
	if !errors.Is(err, domain.ErrPasswordRequired) {
		return nil, err
	}

	p, err = u.pastes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get paste: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(*p.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrIncorrectPassword
	}

	u.views.Increment(ctx, p.ID)
	return p, nil
}

func (u *PasteUsecase) readable(ctx context.Context, id, viewerID string) (*domain.Paste, error) {
	p, err := u.pastes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get paste: %w", err)
	}
	if p.IsExpired(u.now()) {
		return nil, domain.ErrPasteExpired
	}
	if p.IsPublic || p.IsOwnedBy(viewerID) {
		return p, nil
	}
	if p.PasswordHash != nil {
		return nil, domain.ErrPasswordRequired
	}
	return nil, domain.ErrPasteForbidden
}

type UpdatePasteInput struct {
	ID          string
	UserID      string
	Title       *string
	Content     *string
	IsPublic    *bool
	FolderID    *string
	ClearFolder bool
}

// UpdatePaste edits an owned paste. Quota limits apply to creation only.
func (u *PasteUsecase) UpdatePaste(ctx context.Context, input UpdatePasteInput) (*domain.Paste, error) {
	if input.Content != nil && strings.TrimSpace(*input.Content) == "" {
		return nil, domain.ErrEmptyContent
	}
	if input.Title != nil {
		t := strings.TrimSpace(*input.Title)
		if t == "" {
			t = domain.DefaultPasteTitle
		}
		input.Title = &t
	}
	if input.FolderID != nil && !input.ClearFolder {
		if _, err := u.folders.GetByID(ctx, *input.FolderID, input.UserID); err != nil {
			return nil, fmt.Errorf("check folder: %w", err)
		}
	}

	p, err := u.pastes.Update(ctx, input.ID, input.UserID, repository.UpdatePasteInput{
		Title:       input.Title,
		Content:     input.Content,
		IsPublic:    input.IsPublic,
		FolderID:    input.FolderID,
		ClearFolder: input.ClearFolder,
	})
	if err != nil {
		return nil, fmt.Errorf("update paste: %w", err)
	}
	return p, nil
}

func (u *PasteUsecase) DeletePaste(ctx context.Context, id, userID string) error {
	if err := u.pastes.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete paste: %w", err)
	}
	return nil
}

type ListPastesInput struct {
	UserID   string
	FolderID *string
	Cursor   string
	Limit    int
}

type ListPastesResult struct {
	Pastes     []*domain.Paste
	NextCursor *string
}

func (u *PasteUsecase) ListMyPastes(ctx context.Context, input ListPastesInput) (ListPastesResult, error) {
	limit := clampLimit(input.Limit, 20, 100)

	repoInput := repository.ListPastesInput{
		UserID:   input.UserID,
		FolderID: input.FolderID,
		Limit:    limit + 1,
	}

	if input.Cursor != "" {
		cursorTime, cursorID, err := decodeCursor(input.Cursor)
		if err != nil {
			return ListPastesResult{}, domain.ErrInvalidCursor
		}
		repoInput.CursorTime = cursorTime
		repoInput.CursorID = cursorID
	}

	pastes, err := u.pastes.ListByUser(ctx, repoInput)
	if err != nil {
		return ListPastesResult{}, fmt.Errorf("list pastes: %w", err)
	}

	var nextCursor *string
	if len(pastes) == limit+1 {
		last := pastes[limit-1]
		s := encodeCursor(last.CreatedAt, last.ID)
		nextCursor = &s
		pastes = pastes[:limit]
	}

	return ListPastesResult{Pastes: pastes, NextCursor: nextCursor}, nil
}

func (u *PasteUsecase) SearchMyPastes(ctx context.Context, userID, query string) ([]*domain.Paste, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pastes, err := u.pastes.SearchByTitle(ctx, userID, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search pastes: %w", err)
	}
	return pastes, nil
}

type ListPublicPastesInput struct {
	Username  string
	SortBy    repository.PublicSort
	Ascending bool
	Page      int
	PerPage   int
}

type ListPublicPastesResult struct {
	Pastes  []*domain.Paste
	Total   int
	Page    int
	PerPage int
}

func (u *PasteUsecase) ListPublicPastes(ctx context.Context, input ListPublicPastesInput) (ListPublicPastesResult, error) {
	profile, err := u.profiles.FindByUsername(ctx, input.Username)
	if err != nil {
		return ListPublicPastesResult{}, fmt.Errorf("find profile: %w", err)
	}

	perPage := clampLimit(input.PerPage, 10, 50)
	page := input.Page
	if page < 1 {
		page = 1
	}
	sortBy := input.SortBy
	if sortBy != repository.SortByViews {
		sortBy = repository.SortByCreatedAt
	}

	pastes, total, err := u.pastes.ListPublicByUser(ctx, repository.ListPublicPastesInput{
		UserID:    profile.UserID,
		SortBy:    sortBy,
		Ascending: input.Ascending,
		Offset:    (page - 1) * perPage,
		Limit:     perPage,
	})
	if err != nil {
		return ListPublicPastesResult{}, fmt.Errorf("list public pastes: %w", err)
	}

	return ListPublicPastesResult{Pastes: pastes, Total: total, Page: page, PerPage: perPage}, nil
}
