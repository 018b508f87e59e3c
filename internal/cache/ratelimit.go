package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"ProNetwork/storage/redis"
)

// Limiter 按 key 做限流，返回是否放行和窗口内剩余次数
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
}

// RedisLimiter 基于 ZSET 的滑动窗口
type RedisLimiter struct {
	client goredis.UniversalClient
	window time.Duration
	limit  int
}

func NewRedisLimiter(client goredis.UniversalClient, window time.Duration, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, window: window, limit: limit}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	full := redis.Key("rate", key)
	now := time.Now()
	windowStart := now.Add(-rl.window)

	pipe := rl.client.Pipeline()
	// 先移出窗口外的记录，再记录本次请求
	pipe.ZRemRangeByScore(ctx, full, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, full, goredis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	card := pipe.ZCard(ctx, full)
	pipe.Expire(ctx, full, rl.window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	count := int(card.Val())
	return count <= rl.limit, max(rl.limit-count, 0), nil
}

// MemoryLimiter 每个 key 一个令牌桶，用于 memory 驱动
type MemoryLimiter struct {
	limiters map[string]*rate.Limiter
	every    rate.Limit
	burst    int
	mu       sync.Mutex
}

func NewMemoryLimiter(window time.Duration, limit int) *MemoryLimiter {
	return &MemoryLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    rate.Every(window / time.Duration(max(limit, 1))),
		burst:    limit,
	}
}

func (ml *MemoryLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	ml.mu.Lock()
	l, ok := ml.limiters[key]
	if !ok {
		l = rate.NewLimiter(ml.every, ml.burst)
		ml.limiters[key] = l
	}
	ml.mu.Unlock()

	allowed := l.Allow()
	return allowed, max(int(l.Tokens()), 0), nil
}
