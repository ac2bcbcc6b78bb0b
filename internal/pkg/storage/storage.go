package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open when the key does not exist
var ErrNotFound = errors.New("asset not found")

// Store is the read side of an asset backend. Keys are slash separated
// and relative to the backend root, e.g. "nature/us-georgia-nature-1.jpg".
type Store interface {
	// Exists reports whether key resolves to an object. Only transport or
	// permission failures are returned as errors.
	Exists(ctx context.Context, key string) (bool, error)

	// Open streams the object. Callers must close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// URL returns the public URL the backend serves key under.
	URL(key string) string
}
