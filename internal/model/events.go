package model

import (
	"encoding/json"
	"time"
)

// 事件路由键
const (
	EventUserRegistered         = "user.registered"
	EventPasswordResetRequested = "password_reset.requested"
	EventApplicationSubmitted   = "job.application.submitted"
)

// EventRoutingKeys worker 队列绑定的全部路由键
var EventRoutingKeys = []string{
	EventUserRegistered,
	EventPasswordResetRequested,
	EventApplicationSubmitted,
}

// EventMessage 事件消息（用于事件总线）
type EventMessage struct {
	Payload    json.RawMessage `json:"payload"`
	MessageID  string          `json:"message_id"` // 用于幂等性检查
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// UserRegisteredPayload 注册成功，不包含密码
type UserRegisteredPayload struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// PasswordResetPayload 忘记密码请求，只携带邮箱 hash
type PasswordResetPayload struct {
	EmailHash string `json:"email_hash"`
}

// ApplicationSubmittedPayload 职位申请已提交
type ApplicationSubmittedPayload struct {
	Owner         string `json:"owner"`
	JobTitle      string `json:"job_title"`
	Company       string `json:"company"`
	ApplicationID int64  `json:"application_id"`
	JobID         int64  `json:"job_id"`
}
