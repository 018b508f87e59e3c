package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ProNetwork/internal/model/dto"
	"ProNetwork/pkg/response"
)

// GetNetwork 人脉页
// GET /v1/network
func (h *Handler) GetNetwork(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := h.svc.Network.Overview(ctx, uid)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

type connectionOp func(ctx context.Context, uid, id string) (*dto.MessageResponse, error)

func (h *Handler) connection(op connectionOp) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		uid, ok := currentUser(ctx, c)
		if !ok {
			return
		}

		result, err := op(ctx, uid, c.Param("id"))
		if err != nil {
			response.Error(ctx, c, err)
			return
		}

		response.Success(ctx, c, result)
	}
}

// AcceptRequest POST /v1/network/requests/:id/accept
func (h *Handler) AcceptRequest() app.HandlerFunc {
	return h.connection(h.svc.Network.Accept)
}

// IgnoreRequest POST /v1/network/requests/:id/ignore
func (h *Handler) IgnoreRequest() app.HandlerFunc {
	return h.connection(h.svc.Network.Ignore)
}

// Connect POST /v1/network/suggestions/:id/connect
func (h *Handler) Connect() app.HandlerFunc {
	return h.connection(h.svc.Network.Connect)
}

// ListConversations 会话列表
// GET /v1/conversations
func (h *Handler) ListConversations(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := h.svc.Messages.List(ctx, uid)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, result, map[string]interface{}{"total": len(result)})
}

// GetConversation 打开会话
// GET /v1/conversations/:id
func (h *Handler) GetConversation(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := h.svc.Messages.Open(ctx, uid, c.Param("id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// SendMessage 发送消息
// POST /v1/conversations/:id/messages
func (h *Handler) SendMessage(ctx context.Context, c *app.RequestContext) {
	uid, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Messages.Send(ctx, uid, c.Param("id"), req.Content)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, result)
}
