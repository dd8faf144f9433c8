package cache

import (
	"context"
	"time"
)

// Cache is a byte-value cache with per-entry TTLs. The feed handler uses it
// to avoid rebuilding the RSS document on every poll.
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in the cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache
	Delete(ctx context.Context, key string) error
}

// Stats counts cache effectiveness since startup
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
}
