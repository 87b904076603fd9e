package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, ttl), mr
}

func TestRedis_RoundTrip(t *testing.T) {
	store, _ := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session:c1", `{"id":"u1"}`))

	got, err := store.Get(ctx, "session:c1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u1"}`, got)

	require.NoError(t, store.Remove(ctx, "session:c1"))
	_, err = store.Get(ctx, "session:c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_MissingKey(t *testing.T) {
	store, _ := setupTestRedis(t, 0)

	_, err := store.Get(context.Background(), "session:absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_KeysArePrefixed(t *testing.T) {
	store, mr := setupTestRedis(t, 0)

	require.NoError(t, store.Set(context.Background(), "cart:c1", "[]"))
	assert.True(t, mr.Exists("store:cart:c1"))
}

func TestRedis_WritesCarryTTL(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session:c1", `{"id":"u1"}`))
	assert.Equal(t, time.Hour, mr.TTL("store:session:c1"))

	// Abandoned snapshots disappear without a Remove.
	mr.FastForward(2 * time.Hour)
	_, err := store.Get(ctx, "session:c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_ZeroTTLKeepsKeys(t *testing.T) {
	store, mr := setupTestRedis(t, 0)

	require.NoError(t, store.Set(context.Background(), "cart:c1", "[]"))
	assert.Zero(t, mr.TTL("store:cart:c1"))
}
