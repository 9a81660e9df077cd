package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// setAndTrimScript stores one entry, records it in the insertion index,
// forgets index members whose key already expired, and evicts the oldest
// inserts beyond the cap. Running it as one script keeps the index and the
// entries consistent when several instances share the cache.
var setAndTrimScript = redis.NewScript(`
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
	redis.call("ZADD", KEYS[2], ARGV[3], KEYS[1])
	local members = redis.call("ZRANGE", KEYS[2], 0, -1)
	for _, m in ipairs(members) do
		if redis.call("EXISTS", m) == 0 then
			redis.call("ZREM", KEYS[2], m)
		end
	end
	local over = redis.call("ZCARD", KEYS[2]) - tonumber(ARGV[4])
	if over > 0 then
		local oldest = redis.call("ZRANGE", KEYS[2], 0, over - 1)
		for _, m in ipairs(oldest) do
			redis.call("DEL", m)
			redis.call("ZREM", KEYS[2], m)
		end
	end
	return redis.call("ZCARD", KEYS[2])
`)

var sweepScript = redis.NewScript(`
	local members = redis.call("ZRANGE", KEYS[1], 0, -1)
	for _, m in ipairs(members) do
		if redis.call("EXISTS", m) == 0 then
			redis.call("ZREM", KEYS[1], m)
		end
	end
	return redis.call("ZCARD", KEYS[1])
`)

var clearScript = redis.NewScript(`
	local members = redis.call("ZRANGE", KEYS[1], 0, -1)
	for _, m in ipairs(members) do
		redis.call("DEL", m)
	end
	redis.call("DEL", KEYS[1])
	return #members
`)

// RedisOptions holds connection settings shared by Redis-backed components.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// RedisCache is a Cache stored in Redis. Entry TTLs are enforced by Redis
// and insertion order is kept in a sorted set so the size cap evicts the
// oldest insert, matching MemoryCache.
type RedisCache struct {
	client     *redis.Client
	keyPrefix  string
	maxEntries int
	now        func() time.Time
}

// NewRedisCache creates a cache space under keyPrefix on an existing client.
func NewRedisCache(client *redis.Client, keyPrefix string, maxEntries int) *RedisCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if keyPrefix == "" {
		keyPrefix = "starcg:cache"
	}
	return &RedisCache{
		client:     client,
		keyPrefix:  keyPrefix,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *RedisCache) entryKey(key string) string {
	return c.keyPrefix + ":entry:" + key
}

func (c *RedisCache) indexKey() string {
	return c.keyPrefix + ":index"
}

// Get retrieves a value by key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores a value with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	score := c.now().UnixMicro()
	return setAndTrimScript.Run(ctx, c.client,
		[]string{c.entryKey(key), c.indexKey()},
		value, ttl.Milliseconds(), score, c.maxEntries,
	).Err()
}

// Delete removes a value by key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.entryKey(key))
	pipe.ZRem(ctx, c.indexKey(), c.entryKey(key))
	_, err := pipe.Exec(ctx)
	return err
}

// Len returns the number of live entries.
func (c *RedisCache) Len(ctx context.Context) (int, error) {
	n, err := sweepScript.Run(ctx, c.client, []string{c.indexKey()}).Int()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Clear removes all entries in this cache space.
func (c *RedisCache) Clear(ctx context.Context) error {
	return clearScript.Run(ctx, c.client, []string{c.indexKey()}).Err()
}
