// Package storage provides the persistent key-value slot shared by the
// response cache and the cart state manager. A Store is a flat mapping of
// string keys to opaque byte values with last-write-wins semantics; expiry
// policies live in the callers, not here.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a flat key-value persistence backend.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key.
	// Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
