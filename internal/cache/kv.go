package cache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"ProNetwork/storage/redis"
)

// ErrMiss 表示键不存在或已过期
var ErrMiss = errors.New("cache miss")

// KV 是缓存层依赖的最小键值接口，ttl <= 0 表示不过期
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	// CompareAndDelete 仅当当前值等于 val 时删除
	CompareAndDelete(ctx context.Context, key string, val []byte) (bool, error)
}

// ========== Redis ==========

var compareAndDelete = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisKV 所有键都会加上 storage/redis.Key 的前缀
type RedisKV struct {
	client goredis.UniversalClient
}

func NewRedisKV(client goredis.UniversalClient) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, redis.Key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrMiss
	}
	return val, err
}

func (r *RedisKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.client.Set(ctx, redis.Key(key), val, max(ttl, 0)).Err()
}

func (r *RedisKV) SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, redis.Key(key), val, max(ttl, 0)).Result()
}

func (r *RedisKV) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = redis.Key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *RedisKV) CompareAndDelete(ctx context.Context, key string, val []byte) (bool, error) {
	n, err := compareAndDelete.Run(ctx, r.client, []string{redis.Key(key)}, val).Int()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ========== Memory ==========

type memEntry struct {
	expires time.Time
	val     []byte
}

// MemoryKV 进程内实现，过期键在访问时惰性清理
type MemoryKV struct {
	now  func() time.Time
	data map[string]memEntry
	mu   sync.Mutex
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{now: time.Now, data: make(map[string]memEntry)}
}

// lookup 必须在持有 mu 时调用
func (m *MemoryKV) lookup(key string) ([]byte, bool) {
	e, ok := m.data[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.data, key)
		return nil, false
	}
	return e.val, true
}

func (m *MemoryKV) store(key string, val []byte, ttl time.Duration) {
	e := memEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.data[key] = e
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	val, ok := m.lookup(key)
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), val...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store(key, val, ttl)
	return nil
}

func (m *MemoryKV) SetNX(_ context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.store(key, val, ttl)
	return true, nil
}

func (m *MemoryKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryKV) CompareAndDelete(_ context.Context, key string, val []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.lookup(key)
	if !ok || !bytes.Equal(cur, val) {
		return false, nil
	}
	delete(m.data, key)
	return true, nil
}
