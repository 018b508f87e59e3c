package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ProNetwork/pkg/response"
)

// GetMe 当前用户的后端资料
// GET /v1/users/me
func (h *Handler) GetMe(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := h.svc.User.Profile(ctx, uid)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetDashboard 首页概览
// GET /v1/dashboard
func (h *Handler) GetDashboard(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := h.svc.User.Dashboard(ctx, uid)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetShowcase 公开的个人主页
// GET /v1/profiles/:username
func (h *Handler) GetShowcase(ctx context.Context, c *app.RequestContext) {
	result, err := h.svc.User.Showcase(ctx, c.Param("username"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
