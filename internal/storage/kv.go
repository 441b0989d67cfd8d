package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// KV is the key-value capability the status store is built on.
// Implementations give eventual-consistency semantics at best: a Put is not
// guaranteed to be visible to a List or Get issued from another replica.
type KV interface {
	// List returns every key starting with prefix, in backend order.
	List(ctx context.Context, prefix string) ([]string, error)
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks kv when it supports it; backends without a remote
// dependency are always considered reachable.
func Ping(ctx context.Context, kv KV) error {
	if p, ok := kv.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
