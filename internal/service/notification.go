package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/utils"
)

// 通知页的 tab
const (
	TabAll        = "all"
	TabUnread     = "unread"
	TabConnection = "connection"
	TabMessage    = "message"
	TabJob        = "job"
)

// NotificationAction 单条通知上的操作
type NotificationAction string

const (
	ActionRead    NotificationAction = "read"
	ActionAccept  NotificationAction = "accept"
	ActionDecline NotificationAction = "decline"
	ActionViewJob NotificationAction = "view-job"
)

// NotificationService 通知列表和通知上的操作
type NotificationService struct {
	deps Deps
}

// Summary 是通知页顶部的提示语
func Summary(unread int) string {
	switch {
	case unread <= 0:
		return "No new notifications"
	case unread == 1:
		return "You have 1 unread notification"
	default:
		return "You have " + strconv.Itoa(unread) + " unread notifications"
	}
}

func matchTab(n *model.Notification, tab string) bool {
	switch tab {
	case TabAll:
		return true
	case TabUnread:
		return !n.Read
	default:
		return string(n.Type) == tab
	}
}

func (s *NotificationService) item(n *model.Notification) dto.NotificationItem {
	item := dto.NotificationItem{
		ID:          formatID(n.PublicID),
		Type:        string(n.Type),
		Title:       n.Title,
		Description: n.Description,
		Time:        utils.HumanizeSince(n.CreatedAt, s.deps.Now()),
		Read:        n.Read,
		Actionable:  n.Actionable,
	}
	if n.SenderName != "" {
		item.Sender = &dto.NotificationSender{Name: n.SenderName, Avatar: n.SenderAvatar, Title: n.SenderTitle}
	}
	if n.JobTitle != "" {
		item.Job = &dto.NotificationJob{Title: n.JobTitle, Company: n.JobCompany}
	}
	return item
}

// List 按 tab 过滤，未读数总是基于全部通知
func (s *NotificationService) List(ctx context.Context, uid, tab string) (*dto.NotificationListData, error) {
	tab = strings.ToLower(strings.TrimSpace(tab))
	switch tab {
	case "":
		tab = TabAll
	case TabAll, TabUnread, TabConnection, TabMessage, TabJob:
	default:
		return nil, errors.NotificationTabInvalid
	}

	list, err := s.deps.Store.ListNotifications(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread := 0
	out := make([]dto.NotificationItem, 0, len(list))
	for i := range list {
		if !list[i].Read {
			unread++
		}
		if matchTab(&list[i], tab) {
			out = append(out, s.item(&list[i]))
		}
	}

	return &dto.NotificationListData{
		Notifications: out,
		Summary:       Summary(unread),
		Tab:           tab,
		UnreadCount:   unread,
	}, nil
}

// MarkAllRead 全部标记为已读，返回实际变更的条数
func (s *NotificationService) MarkAllRead(ctx context.Context, uid string) (*dto.ReadAllData, error) {
	n, err := s.deps.Store.MarkAllNotificationsRead(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return &dto.ReadAllData{Updated: n}, nil
}

// allowed 判断操作是否适用于该通知类型
func allowed(action NotificationAction, t model.NotificationType) bool {
	switch action {
	case ActionRead:
		return true
	case ActionAccept, ActionDecline:
		return t == model.NotificationConnection
	case ActionViewJob:
		return t == model.NotificationJob
	default:
		return false
	}
}

// Act 在一条通知上执行操作
//
// read、accept、view-job 把通知标记为已读；decline 删除通知。
// 类型不匹配时返回 NOTIFICATION_ACTION_INVALID。
func (s *NotificationService) Act(ctx context.Context, uid, notificationID string, action NotificationAction) (*dto.MessageResponse, error) {
	id, ok := parseID(notificationID)
	if !ok {
		return nil, errors.NotificationNotFound
	}

	n, err := s.deps.Store.GetNotification(ctx, uid, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	if !allowed(action, n.Type) {
		return nil, errors.NotificationActionInvalid
	}

	var msg string
	switch action {
	case ActionDecline:
		err = s.deps.Store.DeleteNotification(ctx, uid, id)
		msg = "Connection request declined."
	case ActionAccept:
		err = s.deps.Store.MarkNotificationRead(ctx, uid, id)
		msg = "You've accepted the connection request."
	default:
		err = s.deps.Store.MarkNotificationRead(ctx, uid, id)
		msg = "Notification marked as read."
	}
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s notification: %w", action, err)
	}

	logger.Logger.Debug("Notification action",
		zap.String("uid", uid),
		zap.Int64("notification_id", id),
		zap.String("action", string(action)),
	)
	return &dto.MessageResponse{Message: msg}, nil
}
