package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "ratelimit:"

// Result 一次计数后的窗口状态
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter 基于 Redis 的固定窗口计数器，窗口从该 key 的第一次请求开始
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	k := keyPrefix + key

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}
	count := incr.Val()

	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return nil, fmt.Errorf("failed to set window: %w", err)
		}
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get window ttl: %w", err)
	}
	// 上次设置过期失败留下的永久 key，补上过期时间
	if ttl < 0 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return nil, fmt.Errorf("failed to set window: %w", err)
		}
		ttl = l.window
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:    count <= int64(l.limit),
		Limit:      l.limit,
		Remaining:  remaining,
		RetryAfter: ttl,
	}, nil
}
