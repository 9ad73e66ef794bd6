package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared across instances.
// Each client key gets up to limit requests per window; the counter
// lives in Redis so all replicas see the same budget.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string

	opTimeout time.Duration
}

// NewRedisLimiter creates a RedisLimiter. limit must be positive.
func NewRedisLimiter(client *redis.Client, limit int64, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		prefix:    "ratelimit:",
		opTimeout: 200 * time.Millisecond,
	}
}

// Allow increments the window counter for key and compares it to the limit.
// Redis being unreachable fails open: a throttling outage must not take
// the public endpoint down with it.
func (l *RedisLimiter) Allow(key string) bool {
	if l.client == nil || l.limit <= 0 {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.opTimeout)
	defer cancel()

	rkey := l.prefix + key
	n, err := l.client.Incr(ctx, rkey).Result()
	if err != nil {
		return true
	}
	if n == 1 {
		// first hit in the window arms the TTL
		l.client.Expire(ctx, rkey, l.window)
	}
	return n <= l.limit
}

var _ Limiter = (*RedisLimiter)(nil)
