package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoply-backend-go/internal/testfixtures"
)

func TestMemoryStoreSetGet(t *testing.T) {
	clock := testfixtures.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore().WithClock(clock.Now)
	ctx := context.Background()

	doc := map[string]interface{}{"name": "Ada"}
	require.NoError(t, store.Set(ctx, "users/u1", Entry{Data: doc, Timestamp: clock.Now()}, 5*time.Minute))

	entry, ok, err := store.Get(ctx, "users/u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc, entry.Data)
}

func TestMemoryStoreExpiry(t *testing.T) {
	clock := testfixtures.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore().WithClock(clock.Now)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", Entry{Data: map[string]interface{}{}}, 5*time.Minute))

	clock.Advance(4 * time.Minute)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDeleteByPrefix(t *testing.T) {
	clock := testfixtures.NewClock(time.Now())
	store := NewMemoryStore().WithClock(clock.Now)
	ctx := context.Background()

	for _, key := range []string{"plans/free", "plans/pro", "plans?isActive", "users/u1"} {
		require.NoError(t, store.Set(ctx, key, Entry{}, time.Hour))
	}

	require.NoError(t, store.DeleteByPrefix(ctx, "plans/"))

	for key, want := range map[string]bool{
		"plans/free":     false,
		"plans/pro":      false,
		"plans?isActive": true,
		"users/u1":       true,
	} {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, want, ok, key)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", Entry{}, time.Hour))
	require.NoError(t, store.Set(ctx, "b", Entry{}, time.Hour))
	require.NoError(t, store.Clear(ctx))

	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreListPayloadKeepsType(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	docs := []map[string]interface{}{{"id": "a"}, {"id": "b"}}
	require.NoError(t, store.Set(ctx, "plans?isActive", Entry{Data: docs}, time.Hour))

	entry, ok, err := store.Get(ctx, "plans?isActive")
	require.NoError(t, err)
	require.True(t, ok)
	got, isList := entry.Data.([]map[string]interface{})
	require.True(t, isList)
	assert.Len(t, got, 2)
}
