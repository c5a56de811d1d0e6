package domain

import (
	"errors"
	"time"
)

var (
	ErrPasteNotFound      = errors.New("paste not found")
	ErrPasteExpired       = errors.New("this paste has expired")
	ErrPasteForbidden     = errors.New("paste is private")
	ErrPasswordRequired   = errors.New("paste is password protected")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmptyContent       = errors.New("please enter some content")
	ErrPasswordForPublic  = errors.New("only private pastes can be password protected")
	ErrFolderNotFound     = errors.New("folder not found")
	ErrFolderNameConflict = errors.New("a folder with this name already exists")
	ErrEmptyFolderName    = errors.New("folder name is required")
	ErrDraftNotFound      = errors.New("draft not found")
	ErrInvalidCursor      = errors.New("invalid cursor")
	ErrInvalidExpiry      = errors.New("expires_in_hours must be one of 1, 24, 168, 720")
)

const DefaultPasteTitle = "Untitled Paste"

type Paste struct {
	ID           string
	UserID       *string // nil for anonymous pastes
	Title        string
	Content      string
	FolderID     *string
	IsPublic     bool
	PasswordHash *string
	ExpiresAt    *time.Time
	Views        int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether the paste's expiry has passed at now.
func (p *Paste) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// IsOwnedBy reports whether userID owns the paste. Anonymous pastes have no owner.
func (p *Paste) IsOwnedBy(userID string) bool {
	return userID != "" && p.UserID != nil && *p.UserID == userID
}

type Folder struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

type Draft struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	IsPublic  bool
	FolderID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
