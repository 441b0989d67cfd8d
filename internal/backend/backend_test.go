package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/statusboard/statusboard/internal/config"
	"github.com/statusboard/statusboard/internal/storage"
)

func TestOpen_Memory(t *testing.T) {
	b, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}})
	require.NoError(t, err)
	defer b.Close()
	require.IsType(t, &storage.Memory{}, b.KV)
	require.Nil(t, b.Redis)
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendRedis},
		Redis:   config.RedisConfig{Host: mr.Host(), Port: mr.Port()},
	}
	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()
	require.IsType(t, &storage.Redis{}, b.KV)
	require.NotNil(t, b.Redis)
	require.NoError(t, storage.Ping(context.Background(), b.KV))
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	_, err := Open(context.Background(), &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendRedis},
		Redis:   config.RedisConfig{Host: host, Port: port},
	})
	require.Error(t, err)
}

func TestOpen_MemoryWithRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Storage:   config.StorageConfig{Backend: config.BackendMemory},
		Redis:     config.RedisConfig{Host: mr.Host(), Port: mr.Port()},
		RateLimit: config.RateLimitConfig{Enabled: true, UseRedis: true},
	}
	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()
	require.IsType(t, &storage.Memory{}, b.KV)
	require.NotNil(t, b.Redis)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: config.BackendSQLite},
		SQLite:  config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "status.db")},
	}
	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, b.KV.Put(ctx, "v1:status:a", []byte(`{}`)))
	got, err := b.KV.Get(ctx, "v1:status:a")
	require.NoError(t, err)
	require.Equal(t, `{}`, string(got))
	require.NoError(t, b.Close())
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Backend: "etcd"}})
	require.Error(t, err)
}
