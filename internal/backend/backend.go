// Package backend turns configuration into a connected storage.KV.
package backend

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/statusboard/statusboard/internal/config"
	"github.com/statusboard/statusboard/internal/database"
	"github.com/statusboard/statusboard/internal/storage"
	"github.com/statusboard/statusboard/pkg/logger"
)

// mongoAttempts is how many times startup tries to reach MongoDB.
const mongoAttempts = 5

// Backend is an opened storage backend plus the resources behind it.
type Backend struct {
	Name string
	KV   storage.KV
	// Redis is set whenever a Redis client was created, either as the KV
	// backend or for the shared rate limiter.
	Redis   *redis.Client
	closers []func() error
}

// Close releases every connection opened by Open.
func (b *Backend) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

// Open connects the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{Name: cfg.Storage.Backend}

	needRedis := cfg.Storage.Backend == config.BackendRedis ||
		(cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis)
	if needRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr(), err)
		}
		logger.Infof("connected to Redis at %s", cfg.Redis.Addr())
		b.Redis = client
		b.closers = append(b.closers, client.Close)
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warnf("using in-memory storage; statuses are lost on restart")
		b.KV = storage.NewMemory()

	case config.BackendRedis:
		b.KV = storage.NewRedis(b.Redis)

	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, db.Close)
		kv, err := storage.NewSQLite(ctx, db)
		if err != nil {
			b.Close()
			return nil, err
		}
		logger.Infof("using SQLite storage at %s", cfg.SQLite.Path)
		b.KV = kv

	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoAttempts,
			func(attempt int, err error) {
				logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, mongoAttempts, err)
			})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() error { return client.Disconnect(context.Background()) })
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		logger.Infof("using MongoDB storage %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		b.KV = storage.NewMongo(col)

	case config.BackendMinIO:
		minioCfg := cfg.MinIO
		kv, err := storage.NewMinIO(ctx, &minioCfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		logger.Infof("using MinIO storage %s/%s", cfg.MinIO.Endpoint, cfg.MinIO.Bucket)
		b.KV = kv

	default:
		b.Close()
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return b, nil
}
