package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ProNetwork/internal/middleware"
	"ProNetwork/internal/service"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/response"
)

// Handler 持有所有 service，方法即路由处理函数
type Handler struct {
	svc *service.Services
}

func New(svc *service.Services) *Handler {
	return &Handler{svc: svc}
}

// currentUser 取出 JWT 中间件写入的用户 ID，缺失时直接写 401
func currentUser(ctx context.Context, c *app.RequestContext) (string, bool) {
	uid, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return "", false
	}
	return uid, true
}

// Health GET /health
func Health(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]string{"status": "ok"})
}
