package dto

// ========== Notifications DTO ==========

// NotificationListQuery 通知列表参数
type NotificationListQuery struct {
	Tab string `query:"tab"`
}

// NotificationSender 通知发送者
type NotificationSender struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Title  string `json:"title"`
}

// NotificationJob 通知关联的职位
type NotificationJob struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

// NotificationItem 单条通知
type NotificationItem struct {
	Sender      *NotificationSender `json:"sender,omitempty"`
	Job         *NotificationJob    `json:"job,omitempty"`
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Time        string              `json:"time"`
	Read        bool                `json:"read"`
	Actionable  bool                `json:"actionable"`
}

// NotificationListData 通知列表
type NotificationListData struct {
	Notifications []NotificationItem `json:"notifications"`
	Summary       string             `json:"summary"`
	Tab           string             `json:"tab"`
	UnreadCount   int                `json:"unread_count"`
}

// ReadAllData 全部已读的结果
type ReadAllData struct {
	Updated int64 `json:"updated"`
}
