package middleware

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 是否记录堆栈
	EnableStackTrace bool
	// 生产环境只返回友好提示
	IsProduction bool
	// 是否记录请求头和小请求体
	LogRequestDetails bool
	// 是否在 span 中记录异常
	RecordInSpan bool
}

func NewRecoverConfig(isProduction bool) RecoverConfig {
	return RecoverConfig{
		EnableStackTrace:  true,
		IsProduction:      isProduction,
		LogRequestDetails: !isProduction,
		RecordInSpan:      true,
	}
}

// RecoverMiddleware 捕获 handler 中的 panic，返回 500
func RecoverMiddleware(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack string
	if cfg.EnableStackTrace {
		stack = stackTrace(4)
	}

	logPanic(ctx, c, err, stack, cfg)

	if cfg.RecordInSpan {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(fmt.Errorf("panic: %v", err))
			span.SetStatus(codes.Error, "panic recovered")
		}
	}

	if cfg.IsProduction {
		response.Error(ctx, c, errors.Internal)
	} else {
		details := map[string]interface{}{
			"panic":     fmt.Sprintf("%v", err),
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if stack != "" {
			details["stack"] = stack
		}
		response.ErrorWithDetails(ctx, c, errors.Internal.WithMessage(fmt.Sprintf("Internal error: %v", err)), details)
	}
	c.Abort()
}

// stackTrace 当前 goroutine 的调用栈，跳过 runtime 帧
func stackTrace(skip int) string {
	var b strings.Builder
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") {
			fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}

func logPanic(ctx context.Context, c *app.RequestContext, err interface{}, stack string, cfg RecoverConfig) {
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
	}

	requestID := string(c.GetHeader("X-Request-ID"))
	if requestID == "" {
		requestID = string(c.GetHeader("X-Trace-ID"))
	}
	fields = append(fields, zap.String("request_id", requestID))

	if userID, ok := GetUserID(ctx, c); ok {
		fields = append(fields, zap.String("user_id", userID))
	}

	if cfg.LogRequestDetails {
		fields = append(fields, zap.String("user_agent", string(c.UserAgent())))
		// 请求体里可能有密码，只记录长度
		fields = append(fields, zap.Int("body_size", len(c.Request.Body())))
	}

	if stack != "" {
		fields = append(fields, zap.String("stack", stack))
	}

	logger.Logger.Error("[PANIC RECOVERED]", fields...)
}
