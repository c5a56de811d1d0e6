package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/gin-gonic/gin"
)

type profileEnsurer interface {
	EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

// EnsureProfile runs after Auth or OptionalAuth. It creates the FREE profile
// on a user's first authenticated request so profile-keyed rows always have a
// parent. Anonymous requests pass through.
func EnsureProfile(profiles profileEnsurer, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.Next()
			return
		}
		if _, err := profiles.EnsureProfile(c.Request.Context(), userID); err != nil {
			logger.ErrorContext(c.Request.Context(), "ensure profile", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}
		c.Next()
	}
}
