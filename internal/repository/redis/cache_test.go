package redis

import (
	"context"
	"testing"
	"time"

	"linktracker-dashboard/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCache(client, ttl), mr
}

func TestCache_MissReturnsNil(t *testing.T) {
	cache, _ := setupCache(t, time.Minute)

	got, err := cache.GetOverview(context.Background())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_SetThenGet(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t, time.Minute)
	want := &domain.OverviewStats{TotalBrands: 3, TotalLinks: 12, ActiveLinks: 9, TotalEvents: 400, TotalClicks: 250}

	require.NoError(t, cache.SetOverview(ctx, want))

	got, err := cache.GetOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, time.Minute, mr.TTL(overviewKey))
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t, 30*time.Second)
	require.NoError(t, cache.SetOverview(ctx, &domain.OverviewStats{TotalBrands: 1}))

	mr.FastForward(31 * time.Second)

	got, err := cache.GetOverview(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCache_DeleteOverview(t *testing.T) {
	ctx := context.Background()
	cache, mr := setupCache(t, time.Minute)
	require.NoError(t, cache.SetOverview(ctx, &domain.OverviewStats{TotalBrands: 1}))

	require.NoError(t, cache.DeleteOverview(ctx))

	assert.False(t, mr.Exists(overviewKey))
	require.NoError(t, cache.DeleteOverview(ctx), "deleting a missing key is not an error")
}

func TestCache_CorruptValue(t *testing.T) {
	cache, mr := setupCache(t, time.Minute)
	require.NoError(t, mr.Set(overviewKey, "{not json"))

	got, err := cache.GetOverview(context.Background())

	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestCache_ServerDown(t *testing.T) {
	cache, mr := setupCache(t, time.Minute)
	mr.Close()

	_, err := cache.GetOverview(context.Background())

	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := InitRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = InitRedis(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}
