package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ProNetwork/internal/middleware"
	"ProNetwork/internal/model/dto"
	"ProNetwork/pkg/response"
)

// Login 用户名密码登录
// POST /v1/auth/login
func (h *Handler) Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Auth.Login(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func (h *Handler) RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Auth.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// Logout 退出登录
// POST /v1/auth/logout
func (h *Handler) Logout(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	if err := h.svc.Auth.Logout(ctx, uid); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}

// ForgotPassword 找回密码
// POST /v1/auth/forgot-password
func (h *Handler) ForgotPassword(ctx context.Context, c *app.RequestContext) {
	var req dto.ForgotPasswordRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Auth.ForgotPassword(ctx, req.Email)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// CSRFToken 返回当前会话的 CSRF token
// GET /v1/auth/csrf
func CSRFToken(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{"csrf_token": middleware.CSRFToken(c)})
}
