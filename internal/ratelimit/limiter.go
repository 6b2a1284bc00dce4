package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dashboard:ratelimit:"

// fixedWindow increments the counter for the caller and starts the window on
// the first hit. It returns {count, ttl_seconds}.
var fixedWindow = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('EXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('TTL', KEYS[1])
	if ttl < 0 then
		redis.call('EXPIRE', KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return {count, ttl}
`)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the window resets.
	RetryAfter time.Duration
}

// RateLimiter counts requests per key in fixed Redis-backed windows, so the
// limit holds across several dashboard instances.
type RateLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

// NewFixedWindowLimiter allows maxRequests per key in every window.
func NewFixedWindowLimiter(client *redis.Client, maxRequests int, window time.Duration) *RateLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RateLimiter{
		client:      client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow records one request for key and reports whether it fits the window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	result, err := fixedWindow.Run(
		ctx,
		rl.client,
		[]string{keyPrefix + key},
		int(rl.window.Seconds()),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(result) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit result: %v", result)
	}

	count, ttl := int(result[0]), time.Duration(result[1])*time.Second
	remaining := rl.maxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:    count <= rl.maxRequests,
		Remaining:  remaining,
		RetryAfter: ttl,
	}, nil
}

// MaxRequests returns the maximum number of requests allowed per window
func (rl *RateLimiter) MaxRequests() int {
	return rl.maxRequests
}
