package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key does not exist or has expired.
// Callers treat it as a cache miss, not a failure.
var ErrNotFound = errors.New("store: key not found")

// Store is the key-scoped boundary to the cache/memory backend. All mutation
// is expressed as atomic single-key operations; there are no multi-key
// transactions.
type Store interface {
	// Get returns the value for key, or ErrNotFound when absent/expired.
	Get(ctx context.Context, key string) (string, error)

	// Set writes the value with the given TTL. A zero TTL means no expiry.
	// Every write resets the TTL for the key.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Append pushes value onto the list at key, trims the list to its last
	// max entries, and refreshes the TTL, all atomically. A reader must never
	// observe more than max entries or a partially trimmed list.
	Append(ctx context.Context, key, value string, max int, ttl time.Duration) error

	// Range returns all entries of the list at key in insertion order.
	// A missing or expired key yields an empty slice, not an error.
	Range(ctx context.Context, key string) ([]string, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
