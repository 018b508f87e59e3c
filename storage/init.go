package storage

import (
	"ProNetwork/internal/model"
	"ProNetwork/storage/database"
	"ProNetwork/storage/mq"
	"ProNetwork/storage/redis"
)

// Init 依次初始化 postgres、redis、rabbitmq，只在 postgres 驱动下调用
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	return mq.Init(model.EventRoutingKeys...)
}
