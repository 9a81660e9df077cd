package cache

import (
	"context"
	"sync"
	"time"
)

// cacheEntry represents a cached value with its insertion time.
type cacheEntry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
	seq      uint64
}

// isExpired reports whether now - storedAt >= ttl.
func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// olderThan orders entries by insertion time, then insertion sequence.
func (e *cacheEntry) olderThan(o *cacheEntry) bool {
	if e.storedAt.Equal(o.storedAt) {
		return e.seq < o.seq
	}
	return e.storedAt.Before(o.storedAt)
}

// MemoryCache is an in-memory implementation of Cache.
// Expiry is checked lazily on Get and swept on every Set; there is no
// background goroutine. Contents do not survive a restart.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*cacheEntry
	maxEntries int
	seq        uint64
	now        func() time.Time
}

// MemoryOption customizes a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

// NewMemoryCache creates a new in-memory cache holding at most maxEntries.
func NewMemoryCache(maxEntries int, opts ...MemoryOption) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &MemoryCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value by key.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || entry.isExpired(c.now()) {
		return nil, ErrCacheMiss
	}

	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value with the given TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	now := c.now()
	c.seq++
	c.entries[key] = &cacheEntry{
		value:    valueCopy,
		storedAt: now,
		ttl:      ttl,
		seq:      c.seq,
	}

	c.removeExpired(now)
	c.evictOldest()
	return nil
}

// Delete removes a value by key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Len returns the number of unexpired entries.
func (c *MemoryCache) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, entry := range c.entries {
		if !entry.isExpired(now) {
			n++
		}
	}
	return n, nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	return nil
}

// removeExpired removes all expired entries. Caller holds the write lock.
func (c *MemoryCache) removeExpired(now time.Time) {
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			delete(c.entries, key)
		}
	}
}

// evictOldest drops the oldest inserts until the cap holds. Caller holds the write lock.
func (c *MemoryCache) evictOldest() {
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest *cacheEntry
		for key, entry := range c.entries {
			if oldest == nil || entry.olderThan(oldest) {
				oldestKey, oldest = key, entry
			}
		}
		delete(c.entries, oldestKey)
	}
}
