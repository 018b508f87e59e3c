package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	messageProcessedPrefix = "mq:processed"
	processedTTL           = 24 * time.Hour
)

// MessageMarks 用于消费端幂等
type MessageMarks struct {
	kv KV
}

func NewMessageMarks(kv KV) *MessageMarks {
	return &MessageMarks{kv: kv}
}

func processedKey(messageID string) string {
	return messageProcessedPrefix + ":" + messageID
}

// TryMarkProcessing 原子地标记消息正在处理，false 表示重复消息或正在被处理
func (m *MessageMarks) TryMarkProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = processedTTL
	}
	ok, err := m.kv.SetNX(ctx, processedKey(messageID), []byte("processing"), ttl)
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return ok, nil
}

// Unmark 处理失败时调用，允许重投后再次处理
func (m *MessageMarks) Unmark(ctx context.Context, messageID string) error {
	return m.kv.Del(ctx, processedKey(messageID))
}

// MarkProcessed 处理成功后延长标记的 TTL
func (m *MessageMarks) MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = processedTTL
	}
	return m.kv.Set(ctx, processedKey(messageID), []byte("completed"), ttl)
}
