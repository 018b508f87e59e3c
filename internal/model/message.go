package model

import "time"

// Conversation 与某个联系人的会话
type Conversation struct {
	BaseModel
	LastMessageAt time.Time `gorm:"type:timestamptz;not null;index" json:"last_message_at"`
	Owner         string    `gorm:"type:varchar(150);not null;index" json:"-"`
	Name          string    `gorm:"type:varchar(128);not null" json:"name"`
	Title         string    `gorm:"type:varchar(128);not null;default:''" json:"title"`
	Avatar        string    `gorm:"type:varchar(8);not null;default:''" json:"avatar"`
	LastMessage   string    `gorm:"type:text;not null;default:''" json:"last_message"`
	PublicID      int64     `gorm:"uniqueIndex;not null" json:"public_id"`
	Unread        bool      `gorm:"not null;default:false" json:"unread"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message 会话中的一条消息
type Message struct {
	BaseModel
	SentAt         time.Time `gorm:"type:timestamptz;not null;index:idx_messages_conversation_sent" json:"sent_at"`
	Sender         string    `gorm:"type:varchar(128);not null" json:"sender"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	PublicID       int64     `gorm:"uniqueIndex;not null" json:"public_id"`
	ConversationID int64     `gorm:"not null;index:idx_messages_conversation_sent" json:"conversation_id"` // 会话的 public_id
	IsUser         bool      `gorm:"not null;default:false" json:"is_user"`
}

func (Message) TableName() string {
	return "messages"
}
