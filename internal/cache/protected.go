package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ProNetwork/pkg/logger"
)

const (
	// 空值缓存标识
	emptyValueFlag = "__EMPTY__"
	emptyValueTTL  = 30 * time.Second
)

// ProtectedCache 带空值保护、TTL 抖动和回源合并的缓存
type ProtectedCache[T any] struct {
	kv        KV
	group     singleflight.Group
	keyPrefix string
	ttl       time.Duration
	emptyTTL  time.Duration
	jitter    time.Duration
}

func NewProtectedCache[T any](kv KV, keyPrefix string, ttl time.Duration) *ProtectedCache[T] {
	return &ProtectedCache[T]{
		kv:        kv,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		emptyTTL:  emptyValueTTL,
		jitter:    ttl / 10,
	}
}

func (pc *ProtectedCache[T]) cacheKey(key string) string {
	return pc.keyPrefix + ":" + key
}

// ttlWithJitter 给 TTL 加随机偏移，避免同一批键同时失效
func (pc *ProtectedCache[T]) ttlWithJitter() time.Duration {
	if pc.jitter <= 0 {
		return pc.ttl
	}
	return pc.ttl + rand.N(pc.jitter)
}

// Set 写入缓存，value 为 nil 时写入空值标识
func (pc *ProtectedCache[T]) Set(ctx context.Context, key string, value *T) error {
	if value == nil {
		return pc.kv.Set(ctx, pc.cacheKey(key), []byte(emptyValueFlag), pc.emptyTTL)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return pc.kv.Set(ctx, pc.cacheKey(key), data, pc.ttlWithJitter())
}

// Get 返回 (值, 是否命中)；命中空值时值为 nil
func (pc *ProtectedCache[T]) Get(ctx context.Context, key string) (*T, bool, error) {
	data, err := pc.kv.Get(ctx, pc.cacheKey(key))
	if errors.Is(err, ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}
	if string(data) == emptyValueFlag {
		return nil, true, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return &v, true, nil
}

// GetOrLoad 未命中时回源，同一个 key 的并发回源只执行一次
//
// load 返回 (nil, nil) 时写入空值标识；load 出错时不写缓存。
func (pc *ProtectedCache[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (*T, error)) (*T, error) {
	v, hit, err := pc.Get(ctx, key)
	if err != nil {
		logger.Logger.Warn("Protected cache read failed, loading from source",
			zap.String("prefix", pc.keyPrefix),
			zap.Error(err),
		)
	} else if hit {
		return v, nil
	}

	res, err, _ := pc.group.Do(key, func() (interface{}, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := pc.Set(ctx, key, loaded); err != nil {
			logger.Logger.Warn("Protected cache write failed",
				zap.String("prefix", pc.keyPrefix),
				zap.Error(err),
			)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*T), nil
}

func (pc *ProtectedCache[T]) Delete(ctx context.Context, key string) error {
	return pc.kv.Del(ctx, pc.cacheKey(key))
}
