// Package kv defines the key-value store the preference and conversation
// repositories persist into. It is the service-side analog of the keyboard
// client's preference storage: string keys, string values, JSON blobs.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is implemented by the Redis client and the in-memory test double.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the integer at key and returns the new
	// value, treating a missing key as zero.
	Incr(ctx context.Context, key string) (int64, error)
	// Update performs a guarded read-modify-write of key. fn receives the
	// current value ("" and false when absent) and returns the new value.
	// Implementations retry on concurrent modification.
	Update(ctx context.Context, key string, fn func(current string, exists bool) (string, error)) error
}
