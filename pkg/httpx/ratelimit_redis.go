package httpx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window counter shared by every replica pointing
// at the same Redis.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, name string, cfg RateLimitConfig) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:" + name,
		limit:  cfg.RequestsPerWindow,
		window: cfg.Window,
		now:    time.Now,
	}
}

// RedisLimiters builds RedisLimiter instances that share client.
func RedisLimiters(client redis.Cmdable) LimiterFactory {
	return func(name string, cfg RateLimitConfig) Limiter { return NewRedisLimiter(client, name, cfg) }
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("httpx: invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("httpx: redis ping: %w", err)
	}
	return client, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowSec := int64(l.window / time.Second)
	if windowSec <= 0 {
		windowSec = 1
	}
	slot := now.Unix() / windowSec
	counterKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("httpx: redis limiter: %w", err)
	}

	if incr.Val() <= int64(l.limit) {
		return Decision{Allowed: true}, nil
	}
	windowEnd := time.Unix((slot+1)*windowSec, 0)
	return Decision{Allowed: false, RetryAfter: windowEnd.Sub(now)}, nil
}
