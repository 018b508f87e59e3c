package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"ProNetwork/internal/cache"
	"ProNetwork/internal/model"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/logger"
	"ProNetwork/storage/mq"
)

// Handler 处理领域事件
type Handler struct {
	notifications repository.NotificationRepository
	marks         *cache.MessageMarks
	nextID        repository.IDFunc
	now           func() time.Time
}

// NewHandler marks 为 nil 时不做幂等检查
func NewHandler(notifications repository.NotificationRepository, marks *cache.MessageMarks, nextID repository.IDFunc) *Handler {
	return &Handler{notifications: notifications, marks: marks, nextID: nextID, now: time.Now}
}

// Dispatch 按事件类型分发；同一个 MessageID 只处理一次
func (h *Handler) Dispatch(ctx context.Context, evt model.EventMessage) error {
	if h.marks != nil {
		first, err := h.marks.TryMarkProcessing(ctx, evt.MessageID, time.Hour)
		if err != nil {
			// 检查失败时继续处理，可能重复处理
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", evt.MessageID),
				zap.Error(err),
			)
		} else if !first {
			logger.Logger.Info("Message already processed, skipping", zap.String("message_id", evt.MessageID))
			return mq.ErrSkipMessage
		}
	}

	err := h.handle(ctx, evt)
	if h.marks == nil {
		return err
	}
	if err != nil {
		if unmarkErr := h.marks.Unmark(ctx, evt.MessageID); unmarkErr != nil {
			logger.Logger.Warn("Failed to unmark message", zap.String("message_id", evt.MessageID), zap.Error(unmarkErr))
		}
		return err
	}
	if markErr := h.marks.MarkProcessed(ctx, evt.MessageID, 48*time.Hour); markErr != nil {
		logger.Logger.Warn("Failed to mark message as processed", zap.String("message_id", evt.MessageID), zap.Error(markErr))
	}
	return nil
}

func (h *Handler) handle(ctx context.Context, evt model.EventMessage) error {
	switch evt.EventType {
	case model.EventUserRegistered:
		var p model.UserRegisteredPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("%w: %v", mq.ErrDropMessage, err)
		}
		logger.Logger.Info("User registered",
			zap.String("message_id", evt.MessageID),
			zap.String("username", p.Username),
			zap.String("role", p.Role),
		)
		return nil

	case model.EventPasswordResetRequested:
		var p model.PasswordResetPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("%w: %v", mq.ErrDropMessage, err)
		}
		// 重置邮件由后端发送，这里只留审计日志
		logger.Logger.Info("Password reset requested",
			zap.String("message_id", evt.MessageID),
			zap.String("email_hash", p.EmailHash),
		)
		return nil

	case model.EventApplicationSubmitted:
		var p model.ApplicationSubmittedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("%w: %v", mq.ErrDropMessage, err)
		}
		return h.notifyApplication(ctx, p)

	default:
		return fmt.Errorf("%w: unknown event type %q", mq.ErrDropMessage, evt.EventType)
	}
}

// notifyApplication 给申请人写一条 job 类型的通知
func (h *Handler) notifyApplication(ctx context.Context, p model.ApplicationSubmittedPayload) error {
	id, err := h.nextID()
	if err != nil {
		return fmt.Errorf("failed to generate notification id: %w", err)
	}

	n := &model.Notification{
		PublicID:    id,
		Owner:       p.Owner,
		Type:        model.NotificationJob,
		Title:       "Application Submitted",
		Description: fmt.Sprintf("Your application for %s at %s has been submitted", p.JobTitle, p.Company),
		JobTitle:    p.JobTitle,
		JobCompany:  p.Company,
	}
	if err := h.notifications.CreateNotification(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	logger.Logger.Info("Application notification created",
		zap.String("owner", p.Owner),
		zap.Int64("application_id", p.ApplicationID),
	)
	return nil
}

// HandleDelivery 适配 mq.MessageHandler
func (h *Handler) HandleDelivery(ctx context.Context, d amqp.Delivery) error {
	evt, err := DecodeEvent(d.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", mq.ErrDropMessage, err)
	}
	if evt.EventType != d.RoutingKey {
		logger.Logger.Warn("Event type does not match routing key",
			zap.String("event_type", evt.EventType),
			zap.String("routing_key", d.RoutingKey),
		)
	}
	return h.Dispatch(ctx, evt)
}

// StartConsumer 阻塞消费 worker 队列，ctx 结束时返回
func StartConsumer(ctx context.Context, h *Handler, prefetch int) error {
	err := mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.WorkerQueue,
		ConsumerTag:   "pronet_worker",
		PrefetchCount: prefetch,
		Handler:       h.HandleDelivery,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
