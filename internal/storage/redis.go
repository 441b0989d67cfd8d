package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// scanCount is the COUNT hint passed to SCAN while listing a prefix.
const scanCount = 200

// Redis implements KV on top of plain Redis string keys.
// Keys are stored verbatim, so the status namespace prefix is the only
// thing separating status records from unrelated keys in the same DB.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client. The caller owns the client lifecycle.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// List walks the keyspace with SCAN rather than KEYS so large databases
// are not blocked. Keys may be reported twice by SCAN; duplicates are dropped.
func (r *Redis) List(ctx context.Context, prefix string) ([]string, error) {
	var (
		cursor uint64
		out    []string
		seen   = map[string]struct{}{}
	)
	match := escapeGlob(prefix) + "*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
		}
		for _, k := range keys {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return b, nil
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// escapeGlob quotes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}
