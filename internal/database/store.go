package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when a key has never been written.
var ErrNotFound = errors.New("key not found")

// ErrQuotaExceeded is returned by a Store that refuses a write because the
// value would not fit.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Store defines the key/value primitive the persistence layer is built on.
// It plays the role browser local storage plays for the web client: each
// collection lives under one key and every write replaces the whole value.
// All methods accept a context.Context as the first parameter to support
// cancellation, timeouts, and request-scoped values.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys starting with prefix, in byte order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close the underlying storage
	Close() error
}
