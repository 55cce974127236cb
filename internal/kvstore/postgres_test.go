package kvstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a real database: export TEST_DB_DSN to enable.
func newPGStore(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping Postgres tests")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store, err := NewPGStore(ctx, pool)
	require.NoError(t, err)
	return store
}

func TestPGStoreRoundTrip(t *testing.T) {
	store := newPGStore(t)
	ctx := context.Background()

	key := "test:kv:roundtrip"
	t.Cleanup(func() { _ = store.Del(ctx, key) })

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, key, []byte(`{"n":1}`)))
	require.NoError(t, store.Set(ctx, key, []byte(`{"n":2}`)))

	v, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"n":2}`, string(v))

	require.NoError(t, store.Del(ctx, key))
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPGStoreGetByPrefix(t *testing.T) {
	store := newPGStore(t)
	ctx := context.Background()

	keys := []string{"test:prefix:a", "test:prefix:b", "test:other:c"}
	t.Cleanup(func() {
		for _, k := range keys {
			_ = store.Del(ctx, k)
		}
	})
	for _, k := range keys {
		require.NoError(t, store.Set(ctx, k, []byte(`{}`)))
	}

	entries, err := store.GetByPrefix(ctx, "test:prefix:")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "test:prefix:a", entries[0].Key)
	assert.Equal(t, "test:prefix:b", entries[1].Key)
}
