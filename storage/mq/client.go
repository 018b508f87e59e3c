package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ProNetwork/config"
	"ProNetwork/pkg/logger"
)

const (
	// EventsExchange 所有领域事件都发到这个 topic exchange
	EventsExchange = "pronet.events"
	// WorkerQueue 由 cmd/worker 消费
	WorkerQueue = "pronet.worker.events"
	// DeadLetterExchange 处理失败且不再重试的消息
	DeadLetterExchange = "pronet.events.dlx"
	deadLetterQueue    = "pronet.worker.events.dead"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init(routingKeys ...string) error {
	connOnce.Do(func() {
		conn, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			logger.Logger.Error("Failed to connect RabbitMQ", zap.String("addr", config.Cfg.RabbitMQAddr), zap.Error(connErr))
			return
		}

		ch, err := conn.Channel()
		if err != nil {
			connErr = fmt.Errorf("failed to open channel: %w", err)
			return
		}
		defer ch.Close()

		if err := DeclareTopology(ch, routingKeys); err != nil {
			connErr = err
			return
		}
		logger.Logger.Info("RabbitMQ initialized successfully", zap.Strings("routing_keys", routingKeys))
	})
	return connErr
}

// DeclareTopology 声明事件 exchange、worker 队列和死信队列，重复声明是幂等的
func DeclareTopology(ch *amqp.Channel, routingKeys []string) error {
	if err := ch.ExchangeDeclare(EventsExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}
	if err := ch.ExchangeDeclare(DeadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", DeadLetterExchange, err)
	}

	if _, err := ch.QueueDeclare(deadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", deadLetterQueue, err)
	}
	if err := ch.QueueBind(deadLetterQueue, "", DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", deadLetterQueue, err)
	}

	if _, err := ch.QueueDeclare(WorkerQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": DeadLetterExchange,
	}); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", WorkerQueue, err)
	}
	for _, key := range routingKeys {
		if err := ch.QueueBind(WorkerQueue, key, EventsExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

func Connection() *amqp.Connection {
	return conn
}

func Close(_ context.Context) error {
	closePublisher()
	if conn == nil || conn.IsClosed() {
		return nil
	}
	return conn.Close()
}
