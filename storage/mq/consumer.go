package mq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ProNetwork/pkg/logger"
)

// ErrSkipMessage 处理器返回它表示消息无需处理（例如重复投递），直接 ack
var ErrSkipMessage = errors.New("skip message")

// ErrDropMessage 处理器返回它表示消息无法处理，不重新入队，进入死信队列
var ErrDropMessage = errors.New("drop message")

type MessageHandler func(ctx context.Context, d amqp.Delivery) error

type ConsumeOptions struct {
	Handler       MessageHandler
	Queue         string
	ConsumerTag   string
	PrefetchCount int
}

// Consume 阻塞消费直到 ctx 结束或 channel 被关闭
func Consume(ctx context.Context, opts ConsumeOptions) error {
	if conn == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	msgs, err := ch.Consume(opts.Queue, opts.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	t := getTracer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed for queue %s", opts.Queue)
			}
			err := t.Handle(ctx, d, func(ctx context.Context) error {
				return opts.Handler(ctx, d)
			})
			settle(d, opts.Queue, err)
		}
	}
}

func settle(d amqp.Delivery, queue string, err error) {
	var ackErr error
	switch {
	case err == nil, errors.Is(err, ErrSkipMessage):
		ackErr = d.Ack(false)
	case errors.Is(err, ErrDropMessage):
		logger.Logger.Warn("Dropping message",
			zap.String("queue", queue),
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		ackErr = d.Nack(false, false)
	default:
		logger.Logger.Error("Failed to process message",
			zap.String("queue", queue),
			zap.String("message_id", d.MessageId),
			zap.Bool("redelivered", d.Redelivered),
			zap.Error(err),
		)
		// 第二次失败后不再重入队
		ackErr = d.Nack(false, !d.Redelivered)
	}
	if ackErr != nil {
		logger.Logger.Warn("Failed to settle message", zap.String("message_id", d.MessageId), zap.Error(ackErr))
	}
}
