package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shoply-backend-go/internal/db"
)

func TestDocKey(t *testing.T) {
	assert.Equal(t, "users/u1", DocKey("users", "u1"))
}

func TestQueryKeyIsOrderIndependent(t *testing.T) {
	a := db.Query{Wheres: []db.Where{
		{Field: "userId", Op: "==", Value: "u1"},
		{Field: "status", Op: "==", Value: "active"},
	}}
	b := db.Query{Wheres: []db.Where{
		{Field: "status", Op: "==", Value: "active"},
		{Field: "userId", Op: "==", Value: "u1"},
	}}
	assert.Equal(t, QueryKey("subscriptions", a), QueryKey("subscriptions", b))
}

func TestQueryKeyDistinguishesQueries(t *testing.T) {
	base := db.Query{Wheres: []db.Where{{Field: "userId", Op: "==", Value: "u1"}}}

	tests := []struct {
		name  string
		other db.Query
	}{
		{"different value", db.Query{Wheres: []db.Where{{Field: "userId", Op: "==", Value: "u2"}}}},
		{"different op", db.Query{Wheres: []db.Where{{Field: "userId", Op: ">=", Value: "u1"}}}},
		{"extra predicate", db.Query{Wheres: []db.Where{
			{Field: "userId", Op: "==", Value: "u1"},
			{Field: "status", Op: "==", Value: "active"},
		}}},
		{"order by", db.Query{Wheres: base.Wheres, OrderBy: "createdAt"}},
		{"order direction", db.Query{Wheres: base.Wheres, OrderBy: "createdAt", Desc: true}},
		{"limit", db.Query{Wheres: base.Wheres, Limit: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, QueryKey("subscriptions", base), QueryKey("subscriptions", tt.other))
		})
	}
}

func TestQueryKeyValueTypesDistinct(t *testing.T) {
	asString := db.Query{Wheres: []db.Where{{Field: "price", Op: "==", Value: "0"}}}
	asNumber := db.Query{Wheres: []db.Where{{Field: "price", Op: "==", Value: 0}}}
	assert.NotEqual(t, QueryKey("plans", asString), QueryKey("plans", asNumber))
}

func TestDeepMergePreservesSiblings(t *testing.T) {
	dst := map[string]interface{}{
		"name": "Ada",
		"settings": map[string]interface{}{
			"notifications": true,
			"newsletter":    false,
		},
	}
	src := map[string]interface{}{
		"settings": map[string]interface{}{"newsletter": true},
	}

	out := deepMerge(dst, src)
	settings := out["settings"].(map[string]interface{})
	assert.Equal(t, true, settings["notifications"])
	assert.Equal(t, true, settings["newsletter"])
	assert.Equal(t, "Ada", out["name"])
}
