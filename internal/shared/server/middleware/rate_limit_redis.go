package middleware

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"jobbuddy-backend/internal/shared/telemetry"
)

// RedisLimiter shares limits across instances with a fixed window per key.
// The window is sized so that Burst requests fit in Burst/Rate seconds.
// Redis failures fail open.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter builds a limiter on top of client.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "jobbuddy:ratelimit:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || l.client == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	window := time.Duration(math.Ceil(float64(rule.Burst)/rule.Rate*1000.0)) * time.Millisecond
	if window < time.Second {
		window = time.Second
	}
	redisKey := l.prefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		telemetry.Warn("ratelimit.redis_error", map[string]any{"key": key, "error": err})
		return true, 0
	}
	retry := ttl.Val()
	if retry < 0 {
		// first hit of the window
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			telemetry.Warn("ratelimit.redis_error", map[string]any{"key": key, "error": err})
		}
		retry = window
	}
	if incr.Val() <= int64(rule.Burst) {
		return true, 0
	}
	return false, retry
}
