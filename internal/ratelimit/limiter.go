// Package ratelimit counts attempts per key within a window. It backs the
// magic-link lockout and the anonymous paste limit.
package ratelimit

import "context"

// Limiter reports whether one more attempt for key is allowed. Backends fail
// open: an error from the store is logged and the attempt is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}
