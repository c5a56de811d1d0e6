package domain

import (
	"errors"
	"time"
)

// TokenIssuer is the iss claim of every session token this service signs.
const TokenIssuer = "rich-pastebin"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenInvalid    = errors.New("token is invalid or expired")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTooManyAttempts = errors.New("too many sign-in attempts")
)

type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MagicToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
