package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ProNetwork/internal/model/dto"
	"ProNetwork/pkg/response"
)

// ListJobs 职位搜索
// GET /v1/jobs?q=&location=
func (h *Handler) ListJobs(ctx context.Context, c *app.RequestContext) {
	var q dto.JobListQuery
	if err := c.BindAndValidate(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Jobs.List(ctx, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, result, map[string]interface{}{
		"q":        q.Query,
		"location": q.Location,
	})
}

// GetJob 职位详情
// GET /v1/jobs/:job_id
func (h *Handler) GetJob(ctx context.Context, c *app.RequestContext) {
	result, err := h.svc.Jobs.Detail(ctx, c.Param("job_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ApplyJob 投递职位
// POST /v1/jobs/:job_id/apply
func (h *Handler) ApplyJob(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Jobs.Apply(ctx, uid, c.Param("job_id"), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, result)
}

// ListApplications 我的申请
// GET /v1/applications?status=
func (h *Handler) ListApplications(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var q dto.ApplicationListQuery
	if err := c.BindAndValidate(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Applications.List(ctx, uid, q.Status)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// WithdrawApplication 撤回申请
// POST /v1/applications/:application_id/withdraw
func (h *Handler) WithdrawApplication(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := h.svc.Applications.Withdraw(ctx, uid, c.Param("application_id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
