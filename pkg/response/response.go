package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"ProNetwork/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// StatusOf 把业务错误码映射为 HTTP 状态码，非 Definition 错误一律 500
func StatusOf(err error) int {
	def, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case "RATE_LIMITED":
		return http.StatusTooManyRequests // 429
	case "INVALID_REQUEST", "UNKNOWN_FIELD", "INVALID_ROLE",
		"CREDENTIALS_MISSING", "EMAIL_REQUIRED", "EMAIL_INVALID",
		"VALIDATION_ERROR", "MESSAGE_EMPTY",
		"APPLICATION_STATUS_INVALID", "NOTIFICATION_TAB_INVALID":
		return http.StatusBadRequest // 400
	case "UNAUTHORIZED", "LOGIN_FAILED", "REFRESH_TOKEN_INVALID":
		return http.StatusUnauthorized // 401
	case "CSRF_INVALID":
		return http.StatusForbidden // 403
	case "NOT_FOUND", "WIZARD_NOT_FOUND", "JOB_NOT_FOUND", "APPLICATION_NOT_FOUND",
		"NOTIFICATION_NOT_FOUND", "CONNECTION_NOT_FOUND", "CONVERSATION_NOT_FOUND",
		"PROFILE_NOT_FOUND":
		return http.StatusNotFound // 404
	case "WIZARD_BUSY", "WIZARD_SUBMITTED", "WIZARD_STEP_INVALID",
		"APPLICATION_NOT_WITHDRAWABLE", "NOTIFICATION_ACTION_INVALID":
		return http.StatusConflict // 409
	case "FIELDS_MISSING", "PASSWORD_MISMATCH", "PASSWORD_TOO_SHORT":
		return http.StatusUnprocessableEntity // 422
	case "SUBMISSION_FAILED", "BACKEND_UNAVAILABLE":
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

func toDetail(err error, details map[string]interface{}) ErrorDetail {
	if def, ok := errors.As(err); ok {
		return ErrorDetail{Code: def.Code, Message: def.Message, Details: details}
	}

	return ErrorDetail{
		Code:    errors.Internal.Code,
		Message: errors.Internal.Message,
		Details: details,
	}
}

// Error 返回错误响应，内部错误的原始信息不会透出
func Error(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(StatusOf(err), ErrorResponse{Error: toDetail(err, nil)})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	c.JSON(StatusOf(err), ErrorResponse{Error: toDetail(err, details)})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

// Created 返回 201
func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidRequest.Code,
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
