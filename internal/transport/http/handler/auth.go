package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	RequestMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, rawToken string) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	clientURL   string
	logger      *slog.Logger
}

// NewAuthHandler redirects browser verifications to clientURL; an empty
// clientURL always answers with JSON.
func NewAuthHandler(authUsecase authUsecaser, clientURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		clientURL:   strings.TrimRight(clientURL, "/"),
		logger:      logger.With("component", "auth_handler"),
	}
}

type magicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /auth/magic-link
// Returns 200 whether or not the email exists. Only the lockout is reported,
// with 429.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var req magicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authUsecase.RequestMagicLink(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrTooManyAttempts) {
			respondError(c, h.logger, "request magic link", err)
			return
		}
		// Failures are not reported so the endpoint cannot probe addresses.
		h.logger.ErrorContext(c.Request.Context(), "request magic link", "error", err)
	}

	c.Status(http.StatusOK)
}

// GET /auth/verify?token=<raw>
// Returns {"token": "<jwt>"} on success, 401 on invalid/expired token. A
// browser following the emailed link (Accept: text/html) is redirected to
// the client's callback page with the token in the fragment.
func (h *AuthHandler) Verify(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	jwtToken, err := h.authUsecase.VerifyMagicLink(c.Request.Context(), rawToken)
	if err != nil {
		respondError(c, h.logger, "verify magic link", err)
		return
	}

	if h.clientURL != "" && c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		c.Redirect(http.StatusFound, h.clientURL+"/auth/callback#token="+url.QueryEscape(jwtToken))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": jwtToken})
}
