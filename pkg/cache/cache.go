// Package cache provides key/value stores whose entries expire at an
// absolute time. Reads treat expired entries as absent.
package cache

import (
	"context"
	"time"
)

// Store is the contract shared by the in-process and Redis backends.
type Store[V any] interface {
	// Set stores value under key, replacing any prior entry, expiring ttl from now.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	// Get returns the value and true, or false when the key was never set or has expired.
	Get(ctx context.Context, key string) (V, bool, error)
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
