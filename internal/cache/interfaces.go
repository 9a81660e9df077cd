package cache

import (
	"context"
	"time"
)

// Cache defines the byte-level operations behind one result cache space.
// Memory and Redis backends are interchangeable without changing callers.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL, purging expired entries and
	// evicting the oldest inserts beyond the size cap.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Len returns the number of live entries.
	Len(ctx context.Context) (int, error)

	// Clear removes all entries from the cache.
	Clear(ctx context.Context) error
}

// Common cache errors
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)

// DefaultMaxEntries caps each cache space.
const DefaultMaxEntries = 50
