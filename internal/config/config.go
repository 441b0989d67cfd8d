package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/statusboard/statusboard/internal/storage"
	"github.com/statusboard/statusboard/pkg/logger"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendMinIO  = "minio"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Status    StatusConfig
	Storage   StorageConfig
	Redis     RedisConfig
	SQLite    SQLiteConfig
	MongoDB   MongoDBConfig
	MinIO     storage.MinIOConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StatusConfig configures the status API itself.
type StatusConfig struct {
	// Secret is the raw Authorization header value required for writes.
	Secret      string
	KeyPrefix   string
	RejectEmpty bool
}

type StorageConfig struct {
	Backend string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr is host:port as expected by go-redis.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type SQLiteConfig struct {
	Path string
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8787")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("SERVER_READ_TIMEOUT", 10)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STATUS_KEY_PREFIX", "v1:")
	v.SetDefault("STATUS_REJECT_EMPTY", false)
	v.SetDefault("STORAGE_BACKEND", BackendMemory)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SQLITE_PATH", "./data/status.db")
	v.SetDefault("MONGODB_DATABASE", "statuspage")
	v.SetDefault("MONGODB_COLLECTION", "kv")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MINIO_BUCKET", "statuspage")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			GinMode:      v.GetString("GIN_MODE"),
			ReadTimeout:  time.Duration(v.GetInt("SERVER_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("SERVER_WRITE_TIMEOUT")) * time.Second,
		},
		Status: StatusConfig{
			Secret:      v.GetString("STATUS_SECRET"),
			KeyPrefix:   v.GetString("STATUS_KEY_PREFIX"),
			RejectEmpty: v.GetBool("STATUS_REJECT_EMPTY"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		MongoDB: MongoDBConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		MinIO: storage.MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// A missing secret is not fatal here: the API refuses every request
	// with an explanation until it is set.
	if cfg.Status.Secret == "" {
		logger.Warnf("STATUS_SECRET is not set; all requests will be refused")
	}

	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Host == "" || c.Redis.Port == "" {
			return fmt.Errorf("STORAGE_BACKEND=redis requires REDIS_HOST and REDIS_PORT")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("STORAGE_BACKEND=sqlite requires SQLITE_PATH")
		}
	case BackendMongo:
		if c.MongoDB.URI == "" || c.MongoDB.Database == "" {
			return fmt.Errorf("STORAGE_BACKEND=mongo requires MONGODB_URI and MONGODB_DATABASE")
		}
	case BackendMinIO:
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("STORAGE_BACKEND=minio requires MINIO_ENDPOINT and MINIO_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.RateLimit.Enabled && c.RateLimit.UseRedis && c.Storage.Backend != BackendRedis && c.Redis.Host == "" {
		return fmt.Errorf("RATE_LIMIT_USE_REDIS requires REDIS_HOST")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
