package backend

import (
	"context"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"ProNetwork/internal/wizard"
	"ProNetwork/pkg/logger"
)

const (
	registrationFailed = "Registration failed"
	unexpectedResponse = "unexpected response"
)

// SubmissionError 是注册失败时交给用户的提示
type SubmissionError struct {
	Detail string
	Status int // 网络错误时为 0
}

func (e *SubmissionError) Error() string { return e.Detail }

// Submit 实现 wizard.Submitter，把表单 POST 到后端注册接口
//
// 2xx 视为成功。非 2xx 且是 JSON 时依次取 detail、error 作为提示，
// 都没有就是 "Registration failed"。网络错误或响应不是 JSON 时提示 "unexpected response"。
func (c *Client) Submit(ctx context.Context, d wizard.Draft) error {
	r, err := c.do(ctx, consts.MethodPost, RegisterPath, d.Body(), "")
	if err != nil {
		logger.Logger.Warn("Registration request failed",
			zap.String("username", d.Username),
			zap.Error(err),
		)
		return &SubmissionError{Detail: unexpectedResponse}
	}

	if r.ok() {
		logger.Logger.Info("Registration accepted",
			zap.String("username", d.Username),
			zap.String("role", string(d.Role)),
			zap.Int("status", r.status),
		)
		return nil
	}

	detail, isJSON := messageFrom(r.body, "detail", "error")
	switch {
	case !isJSON:
		detail = unexpectedResponse
	case detail == "":
		detail = registrationFailed
	}

	logger.Logger.Info("Registration rejected",
		zap.String("username", d.Username),
		zap.Int("status", r.status),
		zap.String("detail", detail),
	)
	return &SubmissionError{Status: r.status, Detail: detail}
}

var _ wizard.Submitter = (*Client)(nil)
