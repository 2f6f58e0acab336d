// Package db defines the storage contracts shared by the repositories.
//
// Two stores back the service: Postgres holds the durable content
// collections and the append-only query log; Redis holds the enhancement
// cache and token-budget counters. Consumers depend on the narrow
// sub-interfaces, never on a concrete driver.
package db

import (
	"context"
	"time"
)

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides the key-value operations used by the enhancement cache
// and the budget counters.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// CacheStore is the full Redis-side facade.
type CacheStore interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}
