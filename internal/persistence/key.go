package persistence

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"shoply-backend-go/internal/db"
)

// DocKey is the cache key for a single document.
func DocKey(collection, id string) string {
	return collection + "/" + id
}

// QueryKey derives a canonical cache key for a query. Predicates are
// serialized as field-op-value triples and sorted, so two logically equal
// predicate lists built in different orders produce the same key.
func QueryKey(collection string, q db.Query) string {
	triples := make([]string, len(q.Wheres))
	for i, w := range q.Wheres {
		triples[i] = w.Field + "\x1f" + w.Op + "\x1f" + canonicalValue(w.Value)
	}
	sort.Strings(triples)

	var b strings.Builder
	b.WriteString(collection)
	b.WriteString("?")
	b.WriteString(strings.Join(triples, "&"))
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		fmt.Fprintf(&b, "|order=%s:%s", q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, "|limit=%d", q.Limit)
	}
	return b.String()
}

// canonicalValue renders a predicate value deterministically. JSON covers
// the value types that reach queries (strings, numbers, booleans).
func canonicalValue(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
