package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/email"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
	"github.com/ErlanBelekov/rich-pastebin/internal/ratelimit"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL = 15 * time.Minute
	defaultJWTTTL   = 24 * time.Hour
)

type AuthUsecase struct {
	users         repository.UserRepository
	email         email.Sender
	lockout       ratelimit.Limiter
	jwtKey        []byte
	tokenTTL      time.Duration
	jwtTTL        time.Duration
	magicLinkBase string
	now           func() time.Time
}

func NewAuthUsecase(users repository.UserRepository, emailSender email.Sender, lockout ratelimit.Limiter, jwtKey []byte, magicLinkBase string) *AuthUsecase {
	return &AuthUsecase{
		users:         users,
		email:         emailSender,
		lockout:       lockout,
		jwtKey:        jwtKey,
		tokenTTL:      defaultTokenTTL,
		jwtTTL:        defaultJWTTTL,
		magicLinkBase: strings.TrimRight(magicLinkBase, "/"),
		now:           time.Now,
	}
}

func hashToken(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}

func newRawToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// RequestMagicLink finds or creates the user, generates a secure token,
// stores its hash, and emails the verify link. Repeated requests for the same
// address inside the lockout window return ErrTooManyAttempts.
func (u *AuthUsecase) RequestMagicLink(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))

	if !u.lockout.Allow(ctx, "email:"+emailAddr) {
		metrics.LoginLockoutsTotal.Inc()
		return domain.ErrTooManyAttempts
	}

	user, err := u.users.FindOrCreate(ctx, emailAddr)
	if err != nil {
		return fmt.Errorf("find or create user: %w", err)
	}

	rawToken, err := newRawToken()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	expiresAt := u.now().Add(u.tokenTTL)
	if err = u.users.CreateMagicToken(ctx, user.ID, hashToken(rawToken), expiresAt); err != nil {
		return fmt.Errorf("store magic token: %w", err)
	}

	link := u.magicLinkBase + "/auth/verify?token=" + rawToken
	msg := email.MagicLink(emailAddr, link, int(u.tokenTTL/time.Minute))
	if err = u.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("send magic link: %w", err)
	}
	return nil
}

// VerifyMagicLink atomically claims the token and returns a signed session
// JWT. The sub claim is the user id the rest of the API keys on.
func (u *AuthUsecase) VerifyMagicLink(ctx context.Context, rawToken string) (string, error) {
	if rawToken == "" {
		return "", domain.ErrTokenInvalid
	}

	mt, err := u.users.ClaimMagicToken(ctx, hashToken(rawToken))
	if err != nil {
		return "", domain.ErrTokenInvalid
	}

	user, err := u.users.FindByID(ctx, mt.UserID)
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	now := u.now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"iss":   domain.TokenIssuer,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(u.jwtTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}
