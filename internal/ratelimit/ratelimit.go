package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter defines the interface for request rate limiting.
type Limiter interface {
	// Allow reports whether the caller identified by key may proceed, and
	// records the attempt.
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed-window limiter backed by Redis, shared across
// replicas. The counter key expires with the window, so an idle client's
// budget resets automatically.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit requests per window.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow increments the caller's window counter and reports whether it is
// still within the limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// NX keeps the first request's expiry; later increments must not slide
	// the window.
	pipe.ExpireNX(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}
