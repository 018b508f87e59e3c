package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/csrf"
	"github.com/hertz-contrib/sessions"
	"github.com/hertz-contrib/sessions/cookie"

	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/response"
)

// SessionName 是浏览器会话 cookie 的名字，注册向导 id 也存放在里面
const SessionName = "pronetwork-session"

// SessionMiddleware cookie 存储的会话
func SessionMiddleware(secret string) app.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   24 * 3600,
		HttpOnly: true,
	})
	return sessions.New(SessionName, store)
}

// CSRFMiddleware 必须挂在 SessionMiddleware 之后；token 从 X-CSRF-TOKEN 头读取
func CSRFMiddleware(secret string) app.HandlerFunc {
	return csrf.New(
		csrf.WithSecret(secret),
		csrf.WithKeyLookUp("header:X-CSRF-TOKEN"),
		csrf.WithErrorFunc(func(ctx context.Context, c *app.RequestContext) {
			response.Error(ctx, c, errors.CSRFInvalid)
			c.Abort()
		}),
	)
}

// CSRFToken 返回当前会话的 token，供 GET /v1/auth/csrf 使用
func CSRFToken(c *app.RequestContext) string {
	return csrf.GetToken(c)
}
