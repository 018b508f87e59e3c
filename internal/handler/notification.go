package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/service"
	"ProNetwork/pkg/response"
)

// ListNotifications 通知列表
// GET /v1/notifications?tab=
func (h *Handler) ListNotifications(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var q dto.NotificationListQuery
	if err := c.BindAndValidate(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Notifications.List(ctx, uid, q.Tab)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ReadAllNotifications 全部已读
// POST /v1/notifications/read-all
func (h *Handler) ReadAllNotifications(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := h.svc.Notifications.MarkAllRead(ctx, uid)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// NotificationAction 返回单条通知操作的处理函数
// POST /v1/notifications/:id/{read,accept,decline,view-job}
func (h *Handler) NotificationAction(action service.NotificationAction) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		uid, ok := currentUser(ctx, c)
		if !ok {
			return
		}

		result, err := h.svc.Notifications.Act(ctx, uid, c.Param("id"), action)
		if err != nil {
			response.Error(ctx, c, err)
			return
		}

		response.Success(ctx, c, result)
	}
}
