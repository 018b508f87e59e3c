package model

// NotificationType 通知类型
type NotificationType string

const (
	NotificationConnection NotificationType = "connection"
	NotificationMessage    NotificationType = "message"
	NotificationJob        NotificationType = "job"
	NotificationEvent      NotificationType = "event"
)

// Notification 站内通知
type Notification struct {
	BaseModel
	Owner        string           `gorm:"type:varchar(150);not null;index" json:"-"`
	Type         NotificationType `gorm:"type:varchar(16);not null" json:"type"`
	Title        string           `gorm:"type:varchar(128);not null" json:"title"`
	Description  string           `gorm:"type:text;not null;default:''" json:"description"`
	SenderName   string           `gorm:"type:varchar(128);not null;default:''" json:"sender_name"`
	SenderAvatar string           `gorm:"type:varchar(8);not null;default:''" json:"sender_avatar"`
	SenderTitle  string           `gorm:"type:varchar(128);not null;default:''" json:"sender_title"`
	JobTitle     string           `gorm:"type:varchar(128);not null;default:''" json:"job_title"`
	JobCompany   string           `gorm:"type:varchar(128);not null;default:''" json:"job_company"`
	PublicID     int64            `gorm:"uniqueIndex;not null" json:"public_id"`
	Read         bool             `gorm:"not null;default:false" json:"read"`
	Actionable   bool             `gorm:"not null;default:false" json:"actionable"`
}

func (Notification) TableName() string {
	return "notifications"
}
