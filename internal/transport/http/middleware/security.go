package middleware

import (
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/requestid"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Security sets common HTTP security headers on every response. Responses
// are JSON only, so the content security policy allows nothing.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		c.Next()
	}
}

// CORS lets the web client at origin call the API with a bearer token.
// Preflight requests are answered here and never reach a handler.
func CORS(origin string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  []string{strings.TrimRight(origin, "/")},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", requestid.Header},
		ExposeHeaders: []string{requestid.Header},
		MaxAge:        12 * time.Hour,
	})
}
