package middleware

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"ProNetwork/internal/cache"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 限流键前缀
	KeyPrefix string
	// 时间窗口内最大请求数，只用于响应头
	MaxRequests int
	// 是否按用户ID限流（需要认证）
	ByUserID bool
}

// AuthRateLimitConfig 登录、注册、找回密码按 IP 限流
var AuthRateLimitConfig = RateLimitConfig{
	KeyPrefix: "auth",
	ByUserID:  false,
}

// GeneralRateLimitConfig 已登录接口按用户限流
var GeneralRateLimitConfig = RateLimitConfig{
	KeyPrefix: "api",
	ByUserID:  true,
}

func limitKey(ctx context.Context, c *app.RequestContext, cfg RateLimitConfig) string {
	if cfg.ByUserID {
		if userID, ok := GetUserID(ctx, c); ok {
			return cfg.KeyPrefix + ":user:" + userID
		}
	}
	return cfg.KeyPrefix + ":ip:" + c.ClientIP()
}

// RateLimitMiddleware 限流器出错时放行，只记录日志
func RateLimitMiddleware(limiter cache.Limiter, cfg RateLimitConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		allowed, remaining, err := limiter.Allow(ctx, limitKey(ctx, c, cfg))
		if err != nil {
			logger.Logger.Error("Failed to check rate limit", zap.Error(err))
			c.Next(ctx)
			return
		}

		if cfg.MaxRequests > 0 {
			c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		}
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			response.Error(ctx, c, errors.RateLimited)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}
