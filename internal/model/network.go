package model

// ConnectionKind 区分收到的请求、推荐和已建立的连接
type ConnectionKind string

const (
	ConnectionRequest    ConnectionKind = "request"
	ConnectionSuggestion ConnectionKind = "suggestion"
	ConnectionConnected  ConnectionKind = "connected"
)

// ConnectionStatus 请求或推荐的处理状态
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionIgnored  ConnectionStatus = "ignored"
	ConnectionSent     ConnectionStatus = "sent" // 对推荐发出了连接请求
)

// Connection 人脉关系
type Connection struct {
	BaseModel
	Owner             string           `gorm:"type:varchar(150);not null;index:idx_connections_owner_kind" json:"-"`
	Kind              ConnectionKind   `gorm:"type:varchar(16);not null;index:idx_connections_owner_kind" json:"kind"`
	Status            ConnectionStatus `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Name              string           `gorm:"type:varchar(128);not null" json:"name"`
	Title             string           `gorm:"type:varchar(128);not null;default:''" json:"title"`
	AvatarInitials    string           `gorm:"type:varchar(8);not null;default:''" json:"avatar_initials"`
	PublicID          int64            `gorm:"uniqueIndex;not null" json:"public_id"`
	MutualConnections int              `gorm:"not null;default:0" json:"mutual_connections"`
}

func (Connection) TableName() string {
	return "connections"
}
