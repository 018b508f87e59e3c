package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"ProNetwork/internal/model"
	"ProNetwork/pkg/snowflake"
)

// NewEvent 构造带唯一 MessageID 的事件
func NewEvent(routingKey string, payload any, now time.Time) (model.EventMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return model.EventMessage{}, fmt.Errorf("failed to marshal %s payload: %w", routingKey, err)
	}

	id, err := snowflake.NextID()
	if err != nil {
		return model.EventMessage{}, fmt.Errorf("failed to generate message ID: %w", err)
	}

	return model.EventMessage{
		MessageID:  fmt.Sprintf("evt_%d", id),
		EventType:  routingKey,
		OccurredAt: now.UTC(),
		Payload:    raw,
	}, nil
}

// DecodeEvent 解析消息体，payload 留给具体的处理器解析
func DecodeEvent(body []byte) (model.EventMessage, error) {
	var evt model.EventMessage
	if err := json.Unmarshal(body, &evt); err != nil {
		return model.EventMessage{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if evt.MessageID == "" || evt.EventType == "" {
		return model.EventMessage{}, fmt.Errorf("event is missing message_id or event_type")
	}
	return evt, nil
}
