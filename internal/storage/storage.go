// Package storage uploads user files to an S3-compatible object store.
package storage

import (
	"context"
	"io"
)

// ObjectStore is satisfied by *MinIOStore. Put returns a URL that serves the
// object without credentials.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
