package ratelimit

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

//go:embed rate_limit.lua
var slidingWindowScript string

// KeyPrefix namespaces limiter keys in Redis.
const KeyPrefix = "ratelimit:"

// RedisLimiter is a sliding window log evaluated atomically in Redis.
type RedisLimiter struct {
	client redis.Scripter
	script *redis.Script
	quota  Quota
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRedisLimiter(client redis.Scripter, quota Quota, logger *zerolog.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		script: redis.NewScript(slidingWindowScript),
		quota:  quota,
		logger: logger,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Limit(ctx context.Context, key string) (*Result, error) {
	now := l.now()
	fullKey := KeyPrefix + key

	values, err := l.script.Run(ctx, l.client, []string{fullKey},
		l.quota.Requests,
		l.quota.Window.Milliseconds(),
		now.UnixMilli(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected rate limit script result: %v", values)
	}

	result := &Result{
		Success:   values[0] == 1,
		Limit:     l.quota.Requests,
		Remaining: int(values[1]),
		Reset:     time.UnixMilli(values[2]),
	}

	if !result.Success {
		l.logger.Debug().
			Str("key", fullKey).
			Time("reset", result.Reset).
			Msg("rate limit exceeded")
	}

	return result, nil
}
