// Package ratelimit implements a fixed-window request counter in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisLimiter struct {
	client   redis.Cmdable
	requests int64
	window   time.Duration
}

func NewRedisLimiter(client redis.Cmdable, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		requests: int64(requests),
		window:   window,
	}
}

func key(scope, identity string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, identity)
}

// Allow counts one request for identity within scope and reports whether it
// fits the window. The counter and its TTL are written in one MULTI so a key
// never outlives a failed EXPIRE. Needs Redis 7 for EXPIRE NX.
func (l *RedisLimiter) Allow(ctx context.Context, scope, identity string) (bool, error) {
	k := key(scope, identity)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	return incr.Val() <= l.requests, nil
}
