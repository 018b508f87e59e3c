package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ProNetwork/config"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/queue"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/snowflake"
	"ProNetwork/storage"
	"ProNetwork/storage/database"
	"ProNetwork/storage/redis"
)

const prefetch = 10

func main() {
	logger.Init()
	defer logger.Sync()

	// memory 驱动下事件在 server 进程内处理，不需要 worker
	if !config.Cfg.UsePostgres() {
		logger.Logger.Fatal("Worker requires STORAGE_DRIVER=postgres",
			zap.String("storage", config.Cfg.StorageDriver),
		)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close(context.Background())

	// 多个 worker 实例需要不同的 SNOWFLAKE_MACHINE_ID
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	store := repository.NewGorm(database.DB(), snowflake.NextID)
	marks := cache.NewMessageMarks(cache.NewRedisKV(redis.Client()))
	h := queue.NewHandler(store, marks, snowflake.NextID)

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	if err := queue.StartConsumer(ctx, h, prefetch); err != nil {
		logger.Logger.Error("Consumer stopped", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
