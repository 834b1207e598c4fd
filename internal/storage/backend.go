package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get for keys that were never written.
var ErrNotFound = errors.New("blob not found")

// Backend abstracts a blob store holding the archival datasets. Keys are
// slash-separated hive-style paths. Entries are written once and never
// mutated: the underlying data is historical and immutable.
type Backend interface {
	// Get returns the payload stored under key, or an error wrapping
	// ErrNotFound when the key was never written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the payload under key, overwriting nothing of value:
	// callers only write keys they know to be absent or identical.
	Put(ctx context.Context, key string, data []byte) error

	// List returns every key under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// CanPut reports whether this backend accepts writes.
	CanPut() bool
}
