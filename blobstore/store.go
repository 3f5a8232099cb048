package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when an artifact does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// ObjectStore is an abstraction for whole-object artifact storage.
type ObjectStore interface {
	// Get reads an artifact in full.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put writes an artifact atomically: a concurrent Get sees either the
	// previous content or the new content, never a partial write.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes an artifact. Deleting a missing artifact is not an
	// error; the caller treats absence as already-done.
	Delete(ctx context.Context, name string) error

	// List returns all artifact names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
