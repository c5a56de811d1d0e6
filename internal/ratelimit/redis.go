package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 250 * time.Millisecond

// RedisLimiter is a fixed-window counter shared across replicas.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger *slog.Logger
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "pastebin:ratelimit:",
		logger: logger.With("component", "redis_limiter"),
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	redisKey := l.prefix + key
	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.ErrorContext(ctx, "redis limiter", "op", "incr", "error", err)
		return true
	}
	if n == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.ErrorContext(ctx, "redis limiter", "op", "expire", "error", err)
		}
	}
	return n <= int64(l.limit)
}
