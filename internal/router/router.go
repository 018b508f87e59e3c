package router

import (
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/jwt"

	"ProNetwork/internal/cache"
	"ProNetwork/internal/handler"
	"ProNetwork/internal/middleware"
	"ProNetwork/internal/service"
)

// Options 路由层需要的中间件依赖
type Options struct {
	Auth    *jwt.HertzJWTMiddleware
	Limiter cache.Limiter // 为 nil 时不限流

	SessionSecret string
	CSRFSecret    string
	CSRFEnabled   bool
	IsProduction  bool
	// 为 false 时不挂 OpenTelemetry 中间件
	Telemetry bool
}

func Register(h *server.Hertz, hd *handler.Handler, opts Options) {
	h.Use(middleware.RecoverMiddleware(middleware.NewRecoverConfig(opts.IsProduction)))
	h.Use(middleware.CORSMiddleware())
	if opts.Telemetry {
		h.Use(middleware.OpenTelemetryMiddleware())
	}

	h.GET("/health", handler.Health)

	limit := func(cfg middleware.RateLimitConfig) []app.HandlerFunc {
		if opts.Limiter == nil {
			return nil
		}
		return []app.HandlerFunc{middleware.RateLimitMiddleware(opts.Limiter, cfg)}
	}
	authed := opts.Auth.MiddlewareFunc()

	v1 := h.Group("/v1")

	// 认证与注册向导，依赖浏览器会话
	auth := v1.Group("/auth", middleware.SessionMiddleware(opts.SessionSecret))
	if opts.CSRFEnabled {
		auth.Use(middleware.CSRFMiddleware(opts.CSRFSecret))
		auth.GET("/csrf", handler.CSRFToken)
	}
	auth.Use(limit(middleware.AuthRateLimitConfig)...)
	{
		auth.POST("/login", hd.Login)
		auth.POST("/token/refresh", hd.RefreshToken)
		auth.POST("/forgot-password", hd.ForgotPassword)
		auth.POST("/logout", authed, hd.Logout)

		signup := auth.Group("/signup")
		{
			signup.POST("", hd.StartSignup)
			signup.GET("", hd.ResumeSignup)
			signup.GET("/:wizard_id", hd.GetSignup)
			signup.PATCH("/:wizard_id", hd.UpdateSignup)
			signup.POST("/:wizard_id/next", hd.NextSignupStep)
			signup.POST("/:wizard_id/back", hd.PrevSignupStep)
			signup.POST("/:wizard_id/submit", hd.SubmitSignup)
		}
	}

	// 公开的职位与个人主页
	v1.GET("/jobs", hd.ListJobs)
	v1.GET("/jobs/:job_id", hd.GetJob)
	v1.GET("/profiles/:username", hd.GetShowcase)

	// 以下路由需要登录
	api := v1.Group("", authed)
	api.Use(limit(middleware.GeneralRateLimitConfig)...)
	{
		api.GET("/users/me", hd.GetMe)
		api.GET("/dashboard", hd.GetDashboard)
		api.POST("/jobs/:job_id/apply", hd.ApplyJob)

		api.GET("/applications", hd.ListApplications)
		api.POST("/applications/:application_id/withdraw", hd.WithdrawApplication)

		api.GET("/notifications", hd.ListNotifications)
		api.POST("/notifications/read-all", hd.ReadAllNotifications)
		api.POST("/notifications/:id/read", hd.NotificationAction(service.ActionRead))
		api.POST("/notifications/:id/accept", hd.NotificationAction(service.ActionAccept))
		api.POST("/notifications/:id/decline", hd.NotificationAction(service.ActionDecline))
		api.POST("/notifications/:id/view-job", hd.NotificationAction(service.ActionViewJob))

		api.GET("/network", hd.GetNetwork)
		api.POST("/network/requests/:id/accept", hd.AcceptRequest())
		api.POST("/network/requests/:id/ignore", hd.IgnoreRequest())
		api.POST("/network/suggestions/:id/connect", hd.Connect())

		api.GET("/conversations", hd.ListConversations)
		api.GET("/conversations/:id", hd.GetConversation)
		api.POST("/conversations/:id/messages", hd.SendMessage)
	}
}
