// Package persistence provides the caching read/write surface in front of
// the remote document store. Reads are served from a bounded-staleness cache
// where possible; writes go through immediately when the network is enabled
// and are queued as pending operations when it is not, with the cache
// updated optimistically on every write path.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shoply-backend-go/internal/cache"
	"shoply-backend-go/internal/db"
)

// DefaultCacheTTL bounds how stale a cached read may be.
const DefaultCacheTTL = 5 * time.Minute

// TimeLayout is the format for timestamp strings stored in documents. The
// fraction is fixed-width so the store's lexicographic string ordering
// matches wall-clock ordering; time.RFC3339Nano drops trailing zeros and
// would sort "...00.125Z" before "...00.12Z".
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRemoteRead wraps failures of remote fetches.
var ErrRemoteRead = errors.New("remote read failed")

// ErrRemoteWrite wraps failures of immediate remote writes.
var ErrRemoteWrite = errors.New("remote write failed")

// Options control cache behavior for a single read.
type Options struct {
	// ForceFetch bypasses the cache lookup and always goes remote.
	ForceFetch bool
	// BypassCache disables the cache lookup without forcing a refresh
	// write-back to be skipped.
	BypassCache bool
}

// Manager is the persistence cache. It is safe for concurrent use; reads and
// writes for the same key are not serialized against each other (last write
// wins), matching the documented contract.
type Manager struct {
	store   db.DocumentStore
	monitor *db.Monitor
	cache   cache.Store
	ttl     time.Duration
	logger  *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewManager creates a persistence manager over the given store, monitor and
// cache backend. A ttl of 0 selects DefaultCacheTTL.
func NewManager(store db.DocumentStore, monitor *db.Monitor, cacheStore cache.Store, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Manager{
		store:   store,
		monitor: monitor,
		cache:   cacheStore,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// WithClock overrides the timestamp source. For tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithIDGenerator overrides document id generation. For tests.
func (m *Manager) WithIDGenerator(newID func() string) *Manager {
	m.newID = newID
	return m
}

// Get returns the document with the given id, served from cache when a
// fresh entry exists and caching is not bypassed. A missing document yields
// (nil, nil).
func (m *Manager) Get(ctx context.Context, collection, id string, opts Options) (map[string]interface{}, error) {
	key := DocKey(collection, id)

	if !opts.ForceFetch && !opts.BypassCache {
		if entry, ok, err := m.cache.Get(ctx, key); err == nil && ok {
			if doc, isDoc := entry.Data.(map[string]interface{}); isDoc {
				return doc, nil
			}
		}
	}

	doc, err := m.store.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		m.logger.Error("failed to fetch document",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRemoteRead, err)
	}

	m.cacheSet(ctx, key, doc)
	return doc, nil
}

// Query runs a filtered read against a collection with the same caching
// discipline as Get. The cache key is canonical across predicate order.
func (m *Manager) Query(ctx context.Context, collection string, q db.Query, opts Options) ([]map[string]interface{}, error) {
	key := QueryKey(collection, q)

	if !opts.ForceFetch && !opts.BypassCache {
		if entry, ok, err := m.cache.Get(ctx, key); err == nil && ok {
			if docs, isList := entry.Data.([]map[string]interface{}); isList {
				return docs, nil
			}
		}
	}

	docs, err := m.store.RunQuery(ctx, collection, q)
	if err != nil {
		m.logger.Error("failed to query collection",
			zap.String("collection", collection), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRemoteRead, err)
	}
	if docs == nil {
		docs = []map[string]interface{}{}
	}

	if err := m.cache.Set(ctx, key, cache.Entry{Data: docs, Timestamp: m.now()}, m.ttl); err != nil {
		m.logger.Warn("failed to cache query result", zap.String("key", key), zap.Error(err))
	}
	return docs, nil
}

// Create writes a new document. The id is taken from data["id"] when
// present, otherwise generated. Creation and update timestamps are stamped
// here. While the network is disabled the write is queued as a pending
// operation; the cache is updated optimistically either way. Returns the
// assigned id.
func (m *Manager) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id, _ := data["id"].(string)
	if id == "" {
		id = m.newID()
	}

	doc := copyDoc(data)
	ts := m.timestamp()
	doc["id"] = id
	doc["createdAt"] = ts
	doc["updatedAt"] = ts

	if m.monitor.IsOnline() {
		if err := m.store.Set(ctx, collection, id, doc); err != nil {
			m.logger.Error("failed to create document",
				zap.String("collection", collection), zap.String("id", id), zap.Error(err))
			return "", fmt.Errorf("%w: %w", ErrRemoteWrite, err)
		}
	} else {
		m.monitor.AddPendingOperation(func(opCtx context.Context) error {
			return m.store.Set(opCtx, collection, id, doc)
		})
	}

	m.cacheSet(ctx, DocKey(collection, id), doc)
	return id, nil
}

// Update merges partial data into the document. The update timestamp is
// stamped here. The partial data is merged into the cached copy (re-fetched
// when possible) so a subsequent cached read reflects the update without a
// remote round-trip.
func (m *Manager) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	stamped := copyDoc(partial)
	stamped["updatedAt"] = m.timestamp()

	if m.monitor.IsOnline() {
		if err := m.store.Merge(ctx, collection, id, stamped); err != nil {
			m.logger.Error("failed to update document",
				zap.String("collection", collection), zap.String("id", id), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrRemoteWrite, err)
		}
	} else {
		m.monitor.AddPendingOperation(func(opCtx context.Context) error {
			return m.store.Merge(opCtx, collection, id, stamped)
		})
	}

	key := DocKey(collection, id)
	base := m.cachedDoc(ctx, key)
	if base == nil && m.monitor.IsOnline() {
		if doc, err := m.Get(ctx, collection, id, Options{ForceFetch: true}); err == nil && doc != nil {
			base = doc
		}
	}
	if base == nil {
		// Offline with nothing cached: seed the cache with the partial so
		// the optimistic-read invariant still holds for the updated fields.
		base = map[string]interface{}{"id": id}
	}
	m.cacheSet(ctx, key, deepMerge(base, stamped))
	return nil
}

// Delete removes the document, queueing the write while offline. The cache
// entry is evicted unconditionally before the remote result is known.
func (m *Manager) Delete(ctx context.Context, collection, id string) error {
	if err := m.cache.Delete(ctx, DocKey(collection, id)); err != nil {
		m.logger.Warn("failed to evict cache entry",
			zap.String("collection", collection), zap.String("id", id), zap.Error(err))
	}

	if m.monitor.IsOnline() {
		if err := m.store.Delete(ctx, collection, id); err != nil {
			m.logger.Error("failed to delete document",
				zap.String("collection", collection), zap.String("id", id), zap.Error(err))
			return fmt.Errorf("%w: %w", ErrRemoteWrite, err)
		}
		return nil
	}

	m.monitor.AddPendingOperation(func(opCtx context.Context) error {
		return m.store.Delete(opCtx, collection, id)
	})
	return nil
}

// InvalidateCache evicts the entry for a single document when id is given,
// otherwise every cached entry for the collection including query results.
func (m *Manager) InvalidateCache(ctx context.Context, collection string, id ...string) error {
	if len(id) > 0 && id[0] != "" {
		return m.cache.Delete(ctx, DocKey(collection, id[0]))
	}
	if err := m.cache.DeleteByPrefix(ctx, collection+"/"); err != nil {
		return err
	}
	return m.cache.DeleteByPrefix(ctx, collection+"?")
}

// ClearCache drops every cached entry.
func (m *Manager) ClearCache(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// timestamp renders the injected clock as the RFC 3339 strings stored in
// documents.
func (m *Manager) timestamp() string {
	return m.now().UTC().Format(TimeLayout)
}

func (m *Manager) cacheSet(ctx context.Context, key string, doc map[string]interface{}) {
	if err := m.cache.Set(ctx, key, cache.Entry{Data: doc, Timestamp: m.now()}, m.ttl); err != nil {
		m.logger.Warn("failed to cache document", zap.String("key", key), zap.Error(err))
	}
}

func (m *Manager) cachedDoc(ctx context.Context, key string) map[string]interface{} {
	entry, ok, err := m.cache.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}
	doc, isDoc := entry.Data.(map[string]interface{})
	if !isDoc {
		return nil
	}
	return doc
}
