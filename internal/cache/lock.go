package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const lockPrefix = "lock"

// Locker 基于 SetNX 的互斥锁，redis 驱动下跨实例生效
type Locker struct {
	kv KV
}

func NewLocker(kv KV) *Locker {
	return &Locker{kv: kv}
}

// TryLock 尝试加锁，拿不到锁时 ok 为 false；unlock 只会释放自己持有的锁
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error) {
	full := lockPrefix + ":" + key
	owner := []byte(uuid.NewString())

	ok, err = l.kv.SetNX(ctx, full, owner, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		_, err := l.kv.CompareAndDelete(ctx, full, owner)
		return err
	}, true, nil
}

// Held 判断锁是否被任何人持有
func (l *Locker) Held(ctx context.Context, key string) (bool, error) {
	_, err := l.kv.Get(ctx, lockPrefix+":"+key)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
