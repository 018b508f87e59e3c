package handler

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/sessions"
	"go.uber.org/zap"

	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/response"
)

// sessionWizardKey 会话中保存当前注册向导 id 的键
const sessionWizardKey = "wizard_id"

func rememberWizard(c *app.RequestContext, id string) {
	sess := sessions.Default(c)
	if id == "" {
		sess.Delete(sessionWizardKey)
	} else {
		sess.Set(sessionWizardKey, id)
	}
	if err := sess.Save(); err != nil {
		logger.Logger.Warn("Failed to save session", zap.Error(err))
	}
}

// StartSignup 新建注册向导
// POST /v1/auth/signup
func (h *Handler) StartSignup(ctx context.Context, c *app.RequestContext) {
	view, err := h.svc.Wizard.Create(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	rememberWizard(c, view.WizardID)
	response.Created(ctx, c, view)
}

// ResumeSignup 按会话中的 id 恢复向导
// GET /v1/auth/signup
func (h *Handler) ResumeSignup(ctx context.Context, c *app.RequestContext) {
	id, _ := sessions.Default(c).Get(sessionWizardKey).(string)
	if id == "" {
		response.Error(ctx, c, errors.WizardNotFound)
		return
	}

	view, err := h.svc.Wizard.Get(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, view)
}

// GetSignup 查询向导状态
// GET /v1/auth/signup/:wizard_id
func (h *Handler) GetSignup(ctx context.Context, c *app.RequestContext) {
	view, err := h.svc.Wizard.Get(ctx, c.Param("wizard_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, view)
}

// UpdateSignup 修改草稿字段，body 是字段名到字符串值的映射
// PATCH /v1/auth/signup/:wizard_id
func (h *Handler) UpdateSignup(ctx context.Context, c *app.RequestContext) {
	var raw map[string]any
	if err := json.Unmarshal(c.Request.Body(), &raw); err != nil {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("Body must be a JSON object"))
		return
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			response.Error(ctx, c, errors.InvalidRequest.WithMessage("Field "+k+" must be a string"))
			return
		}
		fields[k] = s
	}

	view, err := h.svc.Wizard.Set(ctx, c.Param("wizard_id"), fields)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, view)
}

// NextSignupStep 校验当前步骤后前进
// POST /v1/auth/signup/:wizard_id/next
func (h *Handler) NextSignupStep(ctx context.Context, c *app.RequestContext) {
	view, err := h.svc.Wizard.Next(ctx, c.Param("wizard_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, view)
}

// PrevSignupStep 后退一步，不做校验
// POST /v1/auth/signup/:wizard_id/back
func (h *Handler) PrevSignupStep(ctx context.Context, c *app.RequestContext) {
	view, err := h.svc.Wizard.Back(ctx, c.Param("wizard_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, view)
}

// SubmitSignup 在最后一步提交注册
// POST /v1/auth/signup/:wizard_id/submit
func (h *Handler) SubmitSignup(ctx context.Context, c *app.RequestContext) {
	result, err := h.svc.Wizard.Submit(ctx, c.Param("wizard_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	rememberWizard(c, "")
	response.Success(ctx, c, result)
}
