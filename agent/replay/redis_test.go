package replay

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T, opts ...RedisOption) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "s-1:7")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "s-1:7", []byte(`{"ok":true}`)))

	got, err := store.Load(ctx, "s-1:7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(got))
	assert.True(t, mr.Exists(defaultKeyPrefix+"s-1:7"))
}

func TestRedisStoreTTLExpiration(t *testing.T) {
	store, mr := newMiniredisStore(t, WithRedisTTL(time.Second), WithRedisPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("test:k"))

	mr.FastForward(2 * time.Second)

	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreRejectsEmptyKey(t *testing.T) {
	store, _ := newMiniredisStore(t)

	assert.ErrorIs(t, store.Save(context.Background(), "", []byte("v")), ErrInvalidKey)
	_, err := store.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
