package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config selects and configures a KVStore backend.
type Config struct {
	Type            string // memory, sqlite, postgres, mysql, mongodb, redis
	SQLitePath      string
	PostgresDSN     string
	MySQLDSN        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	KeyPrefix       string
	Redis           *redis.Client // required for the redis backend
}

// Open creates the backend named by cfg.Type.
func Open(ctx context.Context, cfg Config, logger *zap.SugaredLogger) (KVStore, error) {
	switch cfg.Type {
	case "memory":
		logger.Warnw("Using in-memory store; tracked items and settings will not survive a restart")
		return NewMemoryStore(), nil
	case "", "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, cfg.PostgresDSN, logger)
	case "mysql":
		return NewMySQLStore(ctx, cfg.MySQLDSN, logger)
	case "mongodb", "mongo":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	case "redis":
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis store requires a redis client")
		}
		return NewRedisStore(cfg.Redis, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
