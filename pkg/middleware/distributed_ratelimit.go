package middleware

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/npsexplorer/explorer/pkg/observability"
)

// DistributedRateLimiter is a fixed-window limiter shared by all instances through Redis
type DistributedRateLimiter struct {
	redis   *redis.Client
	config  *RateLimitConfig
	prefix  string
	metrics *observability.Metrics
}

// NewDistributedRateLimiter creates a new Redis-backed rate limiter
func NewDistributedRateLimiter(redisClient *redis.Client, config *RateLimitConfig, prefix string, metrics *observability.Metrics) *DistributedRateLimiter {
	if config == nil {
		config = DefaultLoginRateLimitConfig()
	}
	if prefix == "" {
		prefix = "npsexplorer:ratelimit"
	}

	return &DistributedRateLimiter{
		redis:   redisClient,
		config:  config,
		prefix:  prefix,
		metrics: metrics,
	}
}

func (rl *DistributedRateLimiter) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", rl.prefix, key)
}

// Allow counts one request in the current window of key.
// On Redis errors the request is allowed and the error returned.
func (rl *DistributedRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := rl.redisKey(key)
	limit := rl.config.capacity()

	// SETNX starts the window with its expiry; INCR keeps the existing TTL.
	pipe := rl.redis.TxPipeline()
	pipe.SetNX(ctx, redisKey, 0, rl.config.WindowDuration)
	incr := pipe.Incr(ctx, redisKey)
	pttl := pipe.PTTL(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		rl.metrics.RecordRedisError("ratelimit")
		return Decision{Allowed: true, Limit: rl.config.RequestsPerWindow}, fmt.Errorf("redis error: %w", err)
	}

	count := incr.Val()
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	decision := Decision{
		Allowed:   count <= int64(limit),
		Limit:     rl.config.RequestsPerWindow,
		Remaining: remaining,
	}
	if !decision.Allowed {
		decision.RetryAfter = pttl.Val()
		if decision.RetryAfter <= 0 {
			decision.RetryAfter = rl.config.WindowDuration
		}
	}

	return decision, nil
}
