package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/response"
	"ProNetwork/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
)

// NewAuth 基于 token.Manager 的密钥构建 JWT 中间件，签发由 token 包负责
func NewAuth(m *token.Manager) (*jwt.HertzJWTMiddleware, error) {
	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "ProNetwork API",
		Key:         m.Secret(),
		Timeout:     m.AccessTTL(),
		MaxRefresh:  m.RefreshTTL(),
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			uid, ok := claims[IdentityKey].(string)
			if !ok || uid == "" {
				return nil
			}
			return uid
		},

		// refresh token 不能当作 access token 使用
		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			if data == nil {
				return false
			}
			claims := jwt.ExtractClaims(ctx, c)
			typ, _ := claims["type"].(string)
			return typ != "refresh"
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			response.Error(ctx, c, errors.Unauthorized.WithMessage(message))
		},

		TokenLookup:   "header: Authorization, cookie: jwt",
		TokenHeadName: "Bearer",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init jwt middleware: %w", err)
	}
	return mw, nil
}

// GetUserID 从请求上下文中获取用户 ID（后端用户名）
func GetUserID(ctx context.Context, c *app.RequestContext) (string, bool) {
	userID, exists := c.Get(IdentityKey)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok {
		return "", false
	}

	return id, true
}
