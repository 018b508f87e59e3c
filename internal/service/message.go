package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/utils"
)

// userSender 是当前用户发出的消息上显示的发送者
const userSender = "You"

// MessageService 会话和消息
type MessageService struct {
	deps Deps
}

func (s *MessageService) conversationItem(c *model.Conversation) dto.ConversationItem {
	return dto.ConversationItem{
		ID:          formatID(c.PublicID),
		Name:        c.Name,
		Title:       c.Title,
		Avatar:      c.Avatar,
		LastMessage: c.LastMessage,
		Time:        utils.HumanizeSince(c.LastMessageAt, s.deps.Now()),
		Unread:      c.Unread,
	}
}

func (s *MessageService) messageItem(m *model.Message) dto.MessageItem {
	return dto.MessageItem{
		ID:      formatID(m.PublicID),
		Sender:  m.Sender,
		Content: m.Content,
		Time:    utils.HumanizeSince(m.SentAt, s.deps.Now()),
		IsUser:  m.IsUser,
	}
}

// List 按最后一条消息倒序返回会话
func (s *MessageService) List(ctx context.Context, uid string) ([]dto.ConversationItem, error) {
	convs, err := s.deps.Store.ListConversations(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	out := make([]dto.ConversationItem, 0, len(convs))
	for i := range convs {
		out = append(out, s.conversationItem(&convs[i]))
	}
	return out, nil
}

func (s *MessageService) conversation(ctx context.Context, uid, conversationID string) (*model.Conversation, error) {
	id, ok := parseID(conversationID)
	if !ok {
		return nil, errors.ConversationNotFound
	}
	c, err := s.deps.Store.GetConversation(ctx, uid, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.ConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return c, nil
}

// Open 返回会话中的消息，并把会话标记为已读
func (s *MessageService) Open(ctx context.Context, uid, conversationID string) (*dto.ConversationDetail, error) {
	c, err := s.conversation(ctx, uid, conversationID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.deps.Store.ListMessages(ctx, c.PublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if c.Unread {
		if err := s.deps.Store.MarkConversationRead(ctx, uid, c.PublicID); err != nil {
			logger.Logger.Warn("Failed to mark conversation read",
				zap.Int64("conversation_id", c.PublicID),
				zap.Error(err),
			)
		} else {
			c.Unread = false
		}
	}

	out := &dto.ConversationDetail{
		Conversation: s.conversationItem(c),
		Messages:     make([]dto.MessageItem, 0, len(msgs)),
	}
	for i := range msgs {
		out.Messages = append(out.Messages, s.messageItem(&msgs[i]))
	}
	return out, nil
}

// Send 以当前用户身份追加一条消息
func (s *MessageService) Send(ctx context.Context, uid, conversationID, content string) (*dto.MessageItem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.MessageEmpty
	}

	c, err := s.conversation(ctx, uid, conversationID)
	if err != nil {
		return nil, err
	}

	id, err := s.deps.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	msg := &model.Message{
		PublicID:       id,
		ConversationID: c.PublicID,
		Sender:         userSender,
		Content:        content,
		IsUser:         true,
		SentAt:         s.deps.Now(),
	}
	err = s.deps.Store.AppendMessage(ctx, uid, msg)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.ConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	item := s.messageItem(msg)
	return &item, nil
}
