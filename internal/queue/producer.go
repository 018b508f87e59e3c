package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ProNetwork/internal/model"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/metrics"
	"ProNetwork/storage/mq"
)

// Publisher 发布领域事件
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AMQPPublisher 发布到 RabbitMQ 的事件 exchange，由 cmd/worker 消费
type AMQPPublisher struct {
	now func() time.Time
}

func NewAMQPPublisher() *AMQPPublisher {
	return &AMQPPublisher{now: time.Now}
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) (err error) {
	defer func() { metrics.RecordEventPublished(ctx, routingKey, err) }()

	evt, err := NewEvent(routingKey, payload, p.now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err = mq.Publish(ctx, mq.EventsExchange, routingKey, evt.MessageID, body); err != nil {
		logger.Logger.Error("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.String("message_id", evt.MessageID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published event",
		zap.String("routing_key", routingKey),
		zap.String("message_id", evt.MessageID),
	)
	return nil
}

// LocalPublisher 在进程内直接交给 Handler 处理，用于 memory 驱动和测试
type LocalPublisher struct {
	handler *Handler
	now     func() time.Time
}

func NewLocalPublisher(h *Handler) *LocalPublisher {
	return &LocalPublisher{handler: h, now: time.Now}
}

func (p *LocalPublisher) Publish(ctx context.Context, routingKey string, payload any) (err error) {
	defer func() { metrics.RecordEventPublished(ctx, routingKey, err) }()

	evt, err := NewEvent(routingKey, payload, p.now())
	if err != nil {
		return err
	}
	return p.handler.Dispatch(ctx, evt)
}

var (
	_ Publisher = (*AMQPPublisher)(nil)
	_ Publisher = (*LocalPublisher)(nil)
)

// PublishApplicationSubmitted 发布职位申请事件
func PublishApplicationSubmitted(ctx context.Context, p Publisher, app *model.Application) error {
	return p.Publish(ctx, model.EventApplicationSubmitted, model.ApplicationSubmittedPayload{
		Owner:         app.Owner,
		JobTitle:      app.JobTitle,
		Company:       app.Company,
		ApplicationID: app.PublicID,
		JobID:         app.JobID,
	})
}
