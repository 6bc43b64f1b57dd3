package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ""), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, empty)

	withAvatar := ana
	withAvatar.AvatarURL = "https://cdn.example.com/ana.png"
	require.NoError(t, store.Save(ctx, withAvatar))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, withAvatar, loaded)

	// a second save replaces every field, including ones it leaves blank
	mr.HSet(DefaultRedisKey, "legacy", "stale")
	replaced := Session{Token: "tok-bob", UserID: 8, Email: "bob@example.com"}
	require.NoError(t, store.Save(ctx, replaced))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, replaced, loaded)
	assert.Empty(t, mr.HGet(DefaultRedisKey, "legacy"))

	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists(DefaultRedisKey))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Session{}, loaded)
}

func TestRedisStore_CustomKeyAndMalformedHash(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, "device:42")
	require.NoError(t, store.Save(ctx, ana))
	assert.True(t, mr.Exists("device:42"))
	assert.False(t, mr.Exists(DefaultRedisKey))

	mr.HSet("device:42", "user_id", "not-a-number")
	_, err := store.Load(ctx)
	assert.ErrorContains(t, err, "malformed user_id")
}

func TestRedisStore_Unreachable(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Load(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Save(ctx, ana))
	assert.Error(t, store.Clear(ctx))
}
