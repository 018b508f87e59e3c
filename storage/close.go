package storage

import (
	"context"

	"go.uber.org/zap"

	"ProNetwork/pkg/logger"
	"ProNetwork/storage/database"
	"ProNetwork/storage/mq"
	"ProNetwork/storage/redis"
)

// Close 按 MQ -> Redis -> Database 的顺序关闭连接，先停止收发消息，最后关数据库
func Close(ctx context.Context) {
	steps := []struct {
		name  string
		close func(context.Context) error
	}{
		{"rabbitmq", mq.Close},
		{"redis", redis.Close},
		{"postgres", database.Close},
	}

	for _, s := range steps {
		if err := s.close(ctx); err != nil {
			logger.Logger.Error("Failed to close storage", zap.String("storage", s.name), zap.Error(err))
			continue
		}
		logger.Logger.Info("Storage closed", zap.String("storage", s.name))
	}
}
