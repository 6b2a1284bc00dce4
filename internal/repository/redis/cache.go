package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"linktracker-dashboard/internal/domain"
	"linktracker-dashboard/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "dashboard:stats:"
	overviewKey = keyPrefix + "overview"
)

// Cache holds computed dashboard statistics in Redis.
// Callers use it cache-aside: read, fall back to the database on a miss,
// then write the fresh value back.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a new Redis stats cache
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
	}
}

// GetOverview returns the cached overview, or nil on a miss.
func (c *Cache) GetOverview(ctx context.Context) (*domain.OverviewStats, error) {
	var stats domain.OverviewStats
	found, err := c.get(ctx, overviewKey, &stats)
	if err != nil || !found {
		return nil, err
	}
	return &stats, nil
}

// SetOverview stores the overview for the configured TTL.
func (c *Cache) SetOverview(ctx context.Context, stats *domain.OverviewStats) error {
	return c.set(ctx, overviewKey, stats)
}

// DeleteOverview drops the cached overview. Brand and link mutations call
// this so counts are not stale for a full TTL.
func (c *Cache) DeleteOverview(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	}()

	if err := c.client.Del(ctx, overviewKey).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss(key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get error: %w", err)
	}

	metrics.RecordCacheHit(key)

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any) error {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// InitRedis creates a new Redis client and checks it can reach the server
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
