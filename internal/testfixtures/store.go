package testfixtures

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"shoply-backend-go/internal/db"
)

// Store is an in-memory db.DocumentStore with the same network gate
// semantics as the Firestore-backed store, plus error injection hooks.
type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]interface{}
	network     bool

	enableErr error
	writeErr  error
	readErr   error

	enableCalls  int
	disableCalls int
	flushCalls   int
}

// NewStore creates an empty store with the network enabled.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]interface{}),
		network:     true,
	}
}

// Seed inserts a document directly, bypassing the network gate.
func (s *Store) Seed(collection, id string, data map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection)[id] = copyDoc(data)
}

// Doc returns the stored document directly, bypassing the network gate.
func (s *Store) Doc(collection, id string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.coll(collection)[id]
	if !ok {
		return nil, false
	}
	return copyDoc(doc), true
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.coll(collection))
}

// SetEnableErr makes EnableNetwork fail with err until cleared.
func (s *Store) SetEnableErr(err error) {
	s.mu.Lock()
	s.enableErr = err
	s.mu.Unlock()
}

// SetWriteErr makes Set, Merge and Delete fail with err until cleared.
func (s *Store) SetWriteErr(err error) {
	s.mu.Lock()
	s.writeErr = err
	s.mu.Unlock()
}

// SetReadErr makes Get and RunQuery fail with err until cleared.
func (s *Store) SetReadErr(err error) {
	s.mu.Lock()
	s.readErr = err
	s.mu.Unlock()
}

// EnableCalls returns how many times EnableNetwork was called.
func (s *Store) EnableCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enableCalls
}

// DisableCalls returns how many times DisableNetwork was called.
func (s *Store) DisableCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disableCalls
}

// FlushCalls returns how many times WaitForPendingWrites was called.
func (s *Store) FlushCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushCalls
}

func (s *Store) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.network {
		return nil, db.ErrNetworkDisabled
	}
	if s.readErr != nil {
		return nil, s.readErr
	}
	doc, ok := s.coll(collection)[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := copyDoc(doc)
	out["id"] = id
	return out, nil
}

func (s *Store) RunQuery(ctx context.Context, collection string, q db.Query) ([]map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.network {
		return nil, db.ErrNetworkDisabled
	}
	if s.readErr != nil {
		return nil, s.readErr
	}

	var out []map[string]interface{}
	for id, doc := range s.coll(collection) {
		match := copyDoc(doc)
		match["id"] = id
		if matchesAll(match, q.Wheres) {
			out = append(out, match)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := compareValues(out[i][q.OrderBy], out[j][q.OrderBy]) < 0
			if q.Desc {
				return !less
			}
			return less
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.network {
		return db.ErrNetworkDisabled
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	s.coll(collection)[id] = copyDoc(data)
	return nil
}

func (s *Store) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.network {
		return db.ErrNetworkDisabled
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	existing, ok := s.coll(collection)[id]
	if !ok {
		existing = map[string]interface{}{}
	}
	for field, value := range data {
		if nested, isMap := value.(map[string]interface{}); isMap {
			if current, curMap := existing[field].(map[string]interface{}); curMap {
				merged := copyDoc(current)
				for k, v := range nested {
					merged[k] = v
				}
				existing[field] = merged
				continue
			}
		}
		existing[field] = value
	}
	s.coll(collection)[id] = existing
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.network {
		return db.ErrNetworkDisabled
	}
	if s.writeErr != nil {
		return s.writeErr
	}
	delete(s.coll(collection), id)
	return nil
}

func (s *Store) EnableNetwork(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enableCalls++
	if s.enableErr != nil {
		return s.enableErr
	}
	s.network = true
	return nil
}

func (s *Store) DisableNetwork(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disableCalls++
	s.network = false
	return nil
}

func (s *Store) WaitForPendingWrites(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushCalls++
	return nil
}

func (s *Store) coll(name string) map[string]map[string]interface{} {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]map[string]interface{})
		s.collections[name] = c
	}
	return c
}

func copyDoc(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func matchesAll(doc map[string]interface{}, wheres []db.Where) bool {
	for _, w := range wheres {
		value, ok := doc[w.Field]
		if !ok {
			return false
		}
		cmp := compareValues(value, w.Value)
		switch w.Op {
		case "==":
			if cmp != 0 {
				return false
			}
		case "<":
			if cmp >= 0 {
				return false
			}
		case "<=":
			if cmp > 0 {
				return false
			}
		case ">":
			if cmp <= 0 {
				return false
			}
		case ">=":
			if cmp < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders mixed document values. Strings that parse as RFC 3339
// timestamps are compared as times, since sub-second fractions do not order
// lexicographically.
func compareValues(a, b interface{}) int {
	if an, ok := asFloat(a); ok {
		if bn, ok := asFloat(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			if at, err := time.Parse(time.RFC3339Nano, as); err == nil {
				if bt, err := time.Parse(time.RFC3339Nano, bs); err == nil {
					switch {
					case at.Before(bt):
						return -1
					case at.After(bt):
						return 1
					default:
						return 0
					}
				}
			}
			return strings.Compare(as, bs)
		}
	}
	return 0
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
