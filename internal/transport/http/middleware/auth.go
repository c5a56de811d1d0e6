package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const errUnauthorized = "Unauthorized"

var errNoBearer = errors.New("no bearer token")

// Auth validates a Bearer JWT and sets "userID" in the gin context.
func Auth(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := subjectFromHeader(c.GetHeader("Authorization"), jwtKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// OptionalAuth sets "userID" when a valid Bearer JWT is present and lets the
// request through as anonymous when there is none. A token that is present
// but invalid is still rejected.
func OptionalAuth(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := subjectFromHeader(c.GetHeader("Authorization"), jwtKey)
		switch {
		case errors.Is(err, errNoBearer):
		case err != nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		default:
			c.Set("userID", userID)
		}
		c.Next()
	}
}

func subjectFromHeader(header string, jwtKey []byte) (string, error) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errNoBearer
	}

	rawToken := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(rawToken, func(*jwt.Token) (any, error) {
		return jwtKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(domain.TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", errors.New("missing subject")
	}
	return userID, nil
}
