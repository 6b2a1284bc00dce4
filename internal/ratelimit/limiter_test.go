package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T, maxRequests int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewFixedWindowLimiter(client, maxRequests, window), mr
}

func TestAllow_BlocksAfterMaxRequests(t *testing.T) {
	ctx := context.Background()
	limiter, _ := setupLimiter(t, 3, time.Minute)

	for i := 1; i <= 3; i++ {
		d, err := limiter.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}

	d, err := limiter.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestAllow_WindowStartsOnFirstHit(t *testing.T) {
	ctx := context.Background()
	limiter, mr := setupLimiter(t, 5, time.Minute)

	_, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)

	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"client"))

	mr.FastForward(20 * time.Second)
	_, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, mr.TTL(keyPrefix+"client"), "later hits keep the window")
}

func TestAllow_ResetsAfterWindow(t *testing.T) {
	ctx := context.Background()
	limiter, mr := setupLimiter(t, 1, time.Minute)

	d, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	d, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	mr.FastForward(time.Minute)

	d, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := setupLimiter(t, 1, time.Minute)

	a, err := limiter.Allow(ctx, "198.51.100.1")
	require.NoError(t, err)
	b, err := limiter.Allow(ctx, "198.51.100.2")
	require.NoError(t, err)

	assert.True(t, a.Allowed)
	assert.True(t, b.Allowed)
}

func TestAllow_RestoresMissingExpiry(t *testing.T) {
	ctx := context.Background()
	limiter, mr := setupLimiter(t, 10, time.Minute)
	require.NoError(t, mr.Set(keyPrefix+"client", "4"))

	d, err := limiter.Allow(ctx, "client")

	require.NoError(t, err)
	assert.Equal(t, 5, 10-d.Remaining)
	assert.Equal(t, time.Minute, d.RetryAfter)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"client"))
}

func TestNewFixedWindowLimiter_MinimumWindow(t *testing.T) {
	limiter, mr := setupLimiter(t, 1, 10*time.Millisecond)

	_, err := limiter.Allow(context.Background(), "client")

	require.NoError(t, err)
	assert.Equal(t, time.Second, mr.TTL(keyPrefix+"client"))
	assert.Equal(t, 1, limiter.MaxRequests())
}

func TestAllow_ServerDown(t *testing.T) {
	limiter, mr := setupLimiter(t, 1, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "client")

	assert.Error(t, err)
}
