package repository

import (
	"context"
	"errors"

	"ProNetwork/internal/model"
)

// ErrNotFound 表示记录不存在或不属于当前用户
var ErrNotFound = errors.New("record not found")

// JobFilter 职位搜索条件，空字段不过滤
type JobFilter struct {
	Query    string // 匹配标题、公司、技能
	Location string
}

type JobRepository interface {
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)
	GetJob(ctx context.Context, publicID int64) (*model.Job, error)
	IncrementApplicants(ctx context.Context, publicID int64) error
}

type ApplicationRepository interface {
	// ListApplications 按申请时间倒序返回 owner 的申请
	ListApplications(ctx context.Context, owner string) ([]model.Application, error)
	GetApplication(ctx context.Context, owner string, publicID int64) (*model.Application, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	UpdateApplicationStatus(ctx context.Context, owner string, publicID int64, status model.ApplicationStatus) error
}

type NotificationRepository interface {
	// ListNotifications 按时间倒序返回 owner 的通知
	ListNotifications(ctx context.Context, owner string) ([]model.Notification, error)
	GetNotification(ctx context.Context, owner string, publicID int64) (*model.Notification, error)
	CreateNotification(ctx context.Context, n *model.Notification) error
	MarkNotificationRead(ctx context.Context, owner string, publicID int64) error
	MarkAllNotificationsRead(ctx context.Context, owner string) (int64, error)
	DeleteNotification(ctx context.Context, owner string, publicID int64) error
}

type NetworkRepository interface {
	ListConnections(ctx context.Context, owner string, kind model.ConnectionKind) ([]model.Connection, error)
	GetConnection(ctx context.Context, owner string, publicID int64) (*model.Connection, error)
	UpdateConnection(ctx context.Context, owner string, publicID int64, kind model.ConnectionKind, status model.ConnectionStatus) error
}

type MessageRepository interface {
	// ListConversations 按最后一条消息时间倒序
	ListConversations(ctx context.Context, owner string) ([]model.Conversation, error)
	GetConversation(ctx context.Context, owner string, publicID int64) (*model.Conversation, error)
	// ListMessages 按发送时间正序
	ListMessages(ctx context.Context, conversationID int64) ([]model.Message, error)
	// AppendMessage 写入消息并更新会话的最后一条消息
	AppendMessage(ctx context.Context, owner string, msg *model.Message) error
	MarkConversationRead(ctx context.Context, owner string, publicID int64) error
}

type ProfileRepository interface {
	GetShowcase(ctx context.Context, username string) (*model.Showcase, error)
}

// Seeder 写入演示数据，重复调用不会产生重复记录
type Seeder interface {
	SeedCatalog(ctx context.Context) error
	SeedOwner(ctx context.Context, owner string) error
}

// Store 汇总所有仓库，service 层只依赖这个接口
type Store interface {
	JobRepository
	ApplicationRepository
	NotificationRepository
	NetworkRepository
	MessageRepository
	ProfileRepository
	Seeder
}
