package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces rate limit counters in a shared Redis.
const RedisKeyPrefix = "docchat:ratelimit:"

// RedisLimiter is a fixed-window counter shared by every replica pointing at
// the same Redis. Burst is ignored; the window admits RequestsPerWindow.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter creates a limiter for one tier.
func NewRedisLimiter(client redis.Cmdable, config RateLimitConfig) *RedisLimiter {
	name := config.Name
	if name == "" {
		name = "default"
	}
	return &RedisLimiter{
		client: client,
		prefix: RedisKeyPrefix + name + ":",
		limit:  int64(config.RequestsPerWindow),
		window: config.Window,
	}
}

// RedisLimiterFactory returns a LimiterFactory backed by client.
func RedisLimiterFactory(client redis.Cmdable) LimiterFactory {
	return func(config RateLimitConfig) Limiter {
		return NewRedisLimiter(client, config)
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + key

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("redis rate limit %s: %w", k, err)
	}

	if count.Val() <= l.limit {
		return true, 0, nil
	}

	retry := ttl.Val()
	if retry <= 0 {
		retry = l.window
	}
	return false, retry, nil
}
