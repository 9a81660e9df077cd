package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements KVStore on a Redis hash. Persistence depends on the
// server's RDB/AOF settings.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore stores slots in the hash "<keyPrefix>:kv".
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "starcg:market"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) hashKey() string {
	return s.keyPrefix + ":kv"
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.hashKey(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("redis", "get", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.hashKey(), key, value).Err(); err != nil {
		return storageErr("redis", "set", key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close is a no-op; the client is shared with the result cache and closed by its owner.
func (s *RedisStore) Close() error { return nil }

var _ KVStore = (*RedisStore)(nil)
