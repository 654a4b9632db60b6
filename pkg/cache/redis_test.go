package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFromClient(client, "otp:"), mr
}

func TestRedisSetGetRemove(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Set(ctx, "a@b.com", "048213", 5*time.Minute))
	assert.True(t, mr.Exists("otp:a@b.com"), "keys carry the prefix")

	v, ok, err := r.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "048213", v)

	require.NoError(t, r.Remove(ctx, "a@b.com"))
	require.NoError(t, r.Remove(ctx, "a@b.com"))
	_, ok, err = r.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(time.Minute)

	_, ok, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisPings(t *testing.T) {
	mr := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr(), Prefix: "otp:"})
	require.NoError(t, err)
	require.NoError(t, r.Close())
}
