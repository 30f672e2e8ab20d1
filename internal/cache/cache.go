// Package cache provides the keyed, time-expiring store backing the
// persistence layer. Two implementations exist: a process-local in-memory
// store and a Redis-backed store for deployments that want cache entries
// shared across instances.
package cache

import (
	"context"
	"time"
)

// Entry is a cached payload together with the time it was stored. Data is
// either a single document (map[string]interface{}) or a query result
// ([]map[string]interface{}).
type Entry struct {
	Data      interface{}
	Timestamp time.Time
}

// Store is the cache backend. Implementations enforce the TTL passed to Set;
// expired entries are never returned from Get.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeleteByPrefix evicts every entry whose key starts with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}
