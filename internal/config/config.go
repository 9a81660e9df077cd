package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Upstream  UpstreamConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Scheduler SchedulerConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string   `envconfig:"APP_NAME" default:"starcg-market-api"`
	Environment string   `envconfig:"APP_ENV" default:"development"`
	Version     string   `envconfig:"APP_VERSION" default:"1.0.0"`
	APIKeys     []string `envconfig:"API_KEYS"` // empty disables auth
}

// UpstreamConfig holds settings for the market website.
type UpstreamConfig struct {
	BaseURL         string        `envconfig:"UPSTREAM_BASE_URL" default:"https://member.starcg.net"`
	MarketEndpoint  string        `envconfig:"UPSTREAM_MARKET_ENDPOINT" default:"/market.php"`
	HistoryEndpoint string        `envconfig:"UPSTREAM_HISTORY_ENDPOINT" default:"/marketrecord.php"`
	Timeout         time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"30s"`
	MaxPages        int           `envconfig:"UPSTREAM_MAX_PAGES" default:"50"`
	RequestsPerSec  float64       `envconfig:"UPSTREAM_RPS" default:"4"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Type       string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	MarketTTL  time.Duration `envconfig:"CACHE_MARKET_TTL" default:"5m"`
	HistoryTTL time.Duration `envconfig:"CACHE_HISTORY_TTL" default:"10m"`
	MaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"50"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StorageConfig holds durable key-value storage settings.
type StorageConfig struct {
	Type      string `envconfig:"STORAGE_TYPE" default:"sqlite"` // memory, sqlite, postgres, mysql, mongodb, redis
	Path      string `envconfig:"STORAGE_PATH" default:"./data/market.db"`
	KeyPrefix string `envconfig:"STORAGE_KEY_PREFIX" default:"starcg:market"`
	// PostgreSQL settings
	Host     string `envconfig:"STORAGE_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"STORAGE_DB_PORT" default:"5432"`
	Name     string `envconfig:"STORAGE_DB_NAME" default:"starcg"`
	User     string `envconfig:"STORAGE_DB_USER" default:"postgres"`
	Password string `envconfig:"STORAGE_DB_PASS" default:""`
	SSLMode  string `envconfig:"STORAGE_DB_SSLMODE" default:"disable"`
	// MySQL settings
	MySQLDSN string `envconfig:"MYSQL_DSN" default:"root:@tcp(localhost:3306)/starcg?parseTime=true"`
	// MongoDB settings
	MongoURI        string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"starcg"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"kv"`
}

// SchedulerConfig holds price refresh scheduler settings.
type SchedulerConfig struct {
	Enabled      bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
	TickInterval time.Duration `envconfig:"SCHEDULER_TICK" default:"1m"`
	HistoryPages int           `envconfig:"SCHEDULER_HISTORY_PAGES" default:"3"`
	TickTimeout  time.Duration `envconfig:"SCHEDULER_TICK_TIMEOUT" default:"5m"`
}

// NotifyConfig holds notification sink settings.
type NotifyConfig struct {
	AllowedOrigins []string `envconfig:"NOTIFY_ALLOWED_ORIGINS"` // empty allows any origin
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StorageConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.User, s.Password, s.Host, s.Port, s.Name, s.SSLMode)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MarketURL returns the absolute market search URL.
func (u *UpstreamConfig) MarketURL() string {
	return strings.TrimRight(u.BaseURL, "/") + u.MarketEndpoint
}

// HistoryURL returns the absolute transaction history URL.
func (u *UpstreamConfig) HistoryURL() string {
	return strings.TrimRight(u.BaseURL, "/") + u.HistoryEndpoint
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Upstream.MaxPages < 1 {
		return fmt.Errorf("UPSTREAM_MAX_PAGES must be at least 1")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1")
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid CACHE_TYPE %q (must be memory or redis)", c.Cache.Type)
	}
	switch c.Storage.Type {
	case "memory", "sqlite", "postgres", "postgresql", "mysql", "mongodb", "mongo", "redis":
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q", c.Storage.Type)
	}
	if c.Scheduler.TickInterval <= 0 {
		return fmt.Errorf("SCHEDULER_TICK must be positive")
	}
	return nil
}
