package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestLimiter_Allow(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	limiter := NewLimiter(rdb, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 3, res.Limit)
	assert.True(t, res.RetryAfter > 0 && res.RetryAfter <= time.Minute)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	limiter := NewLimiter(rdb, 1, time.Minute)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_WindowResets(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	limiter := NewLimiter(rdb, 1, time.Minute)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	res, err := limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	mr.FastForward(time.Minute + time.Second)

	res, err = limiter.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiter_RedisDown(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	limiter := NewLimiter(rdb, 1, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "ip")
	assert.Error(t, err)
}
