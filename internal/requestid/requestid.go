// Package requestid carries the per-request correlation id through contexts.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is read from clients and proxies and echoed on every response.
const Header = "X-Request-ID"

const maxLen = 64

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

// Valid accepts client-supplied ids of up to 64 printable, non-space ASCII
// characters so that they are safe to log verbatim.
func Valid(id string) bool {
	if id == "" || len(id) > maxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns "" when ctx carries no id.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
