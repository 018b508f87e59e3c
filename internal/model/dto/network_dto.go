package dto

// ========== Network 与 Messages DTO ==========

// ConnectionItem 人脉卡片
type ConnectionItem struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Title             string `json:"title"`
	Avatar            string `json:"avatar"`
	Status            string `json:"status"`
	MutualConnections int    `json:"mutual_connections"`
}

// NetworkData 人脉页
type NetworkData struct {
	Requests    []ConnectionItem `json:"requests"`
	Suggestions []ConnectionItem `json:"suggestions"`
	Connections int              `json:"connections"`
}

// ConversationItem 会话列表项
type ConversationItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Avatar      string `json:"avatar"`
	LastMessage string `json:"last_message"`
	Time        string `json:"time"`
	Unread      bool   `json:"unread"`
}

// MessageItem 会话中的一条消息
type MessageItem struct {
	ID      string `json:"id"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Time    string `json:"time"`
	IsUser  bool   `json:"is_user"`
}

// ConversationDetail 会话详情
type ConversationDetail struct {
	Conversation ConversationItem `json:"conversation"`
	Messages     []MessageItem    `json:"messages"`
}

// SendMessageRequest 发送消息
type SendMessageRequest struct {
	Content string `json:"content"`
}
