package main

import (
	"context"
	"time"

	"ProNetwork/config"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/queue"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/snowflake"
	"ProNetwork/storage"
	"ProNetwork/storage/database"
	"ProNetwork/storage/redis"
)

// infra 是按存储驱动组装出来的底层依赖
type infra struct {
	store     repository.Store
	kv        cache.KV
	publisher queue.Publisher
	limiter   cache.Limiter
	close     func(context.Context)
}

// newInfra memory 驱动全部在进程内，事件直接交给本地 handler；
// postgres 驱动使用数据库、redis 和 rabbitmq，事件由 worker 消费
func newInfra() (*infra, error) {
	window := time.Second

	if !config.Cfg.UsePostgres() {
		store := repository.NewMemory(snowflake.NextID)
		kv := cache.NewMemoryKV()
		return &infra{
			store:     store,
			kv:        kv,
			publisher: queue.NewLocalPublisher(queue.NewHandler(store, cache.NewMessageMarks(kv), snowflake.NextID)),
			limiter:   cache.NewMemoryLimiter(window, config.Cfg.RateLimitRPS),
			close:     func(context.Context) {},
		}, nil
	}

	if err := storage.Init(); err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		storage.Close(context.Background())
		return nil, err
	}

	return &infra{
		store:     repository.NewGorm(database.DB(), snowflake.NextID),
		kv:        cache.NewRedisKV(redis.Client()),
		publisher: queue.NewAMQPPublisher(),
		limiter:   cache.NewRedisLimiter(redis.Client(), window, config.Cfg.RateLimitRPS),
		close:     storage.Close,
	}, nil
}
