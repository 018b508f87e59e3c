package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
)

// NetworkService 人脉请求和推荐
type NetworkService struct {
	deps Deps
}

func connectionItem(c *model.Connection) dto.ConnectionItem {
	return dto.ConnectionItem{
		ID:                formatID(c.PublicID),
		Name:              c.Name,
		Title:             c.Title,
		Avatar:            c.AvatarInitials,
		Status:            string(c.Status),
		MutualConnections: c.MutualConnections,
	}
}

// Overview 返回待处理的请求、推荐和人脉数量
//
// 人脉数量是主页上的基数加上在本服务里新建立的连接。
func (s *NetworkService) Overview(ctx context.Context, uid string) (*dto.NetworkData, error) {
	var (
		requests    []model.Connection
		suggestions []model.Connection
		connected   []model.Connection
		base        int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		requests, err = s.deps.Store.ListConnections(gctx, uid, model.ConnectionRequest)
		return err
	})
	g.Go(func() (err error) {
		suggestions, err = s.deps.Store.ListConnections(gctx, uid, model.ConnectionSuggestion)
		return err
	})
	g.Go(func() (err error) {
		connected, err = s.deps.Store.ListConnections(gctx, uid, model.ConnectionConnected)
		return err
	})
	g.Go(func() error {
		sc, err := s.deps.Store.GetShowcase(gctx, uid)
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		base = sc.Connections
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}

	out := &dto.NetworkData{
		Requests:    make([]dto.ConnectionItem, 0, len(requests)),
		Suggestions: make([]dto.ConnectionItem, 0, len(suggestions)),
		Connections: base + len(connected),
	}
	for i := range requests {
		if requests[i].Status == model.ConnectionPending {
			out.Requests = append(out.Requests, connectionItem(&requests[i]))
		}
	}
	for i := range suggestions {
		out.Suggestions = append(out.Suggestions, connectionItem(&suggestions[i]))
	}
	return out, nil
}

// transition 校验连接的当前种类后修改种类和状态
func (s *NetworkService) transition(ctx context.Context, uid, connectionID string, from model.ConnectionKind, kind model.ConnectionKind, status model.ConnectionStatus) error {
	id, ok := parseID(connectionID)
	if !ok {
		return errors.ConnectionNotFound
	}

	c, err := s.deps.Store.GetConnection(ctx, uid, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.ConnectionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	if c.Kind != from || c.Status != model.ConnectionPending {
		return errors.ConnectionNotFound
	}

	err = s.deps.Store.UpdateConnection(ctx, uid, id, kind, status)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.ConnectionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update connection: %w", err)
	}

	logger.Logger.Debug("Connection updated",
		zap.String("uid", uid),
		zap.Int64("connection_id", id),
		zap.String("kind", string(kind)),
		zap.String("status", string(status)),
	)
	return nil
}

// Accept 接受请求，对方进入已建立的人脉
func (s *NetworkService) Accept(ctx context.Context, uid, connectionID string) (*dto.MessageResponse, error) {
	if err := s.transition(ctx, uid, connectionID, model.ConnectionRequest, model.ConnectionConnected, model.ConnectionAccepted); err != nil {
		return nil, err
	}
	return &dto.MessageResponse{Message: "Connection request accepted."}, nil
}

// Ignore 忽略请求
func (s *NetworkService) Ignore(ctx context.Context, uid, connectionID string) (*dto.MessageResponse, error) {
	if err := s.transition(ctx, uid, connectionID, model.ConnectionRequest, model.ConnectionRequest, model.ConnectionIgnored); err != nil {
		return nil, err
	}
	return &dto.MessageResponse{Message: "Connection request ignored."}, nil
}

// Connect 向推荐的人发出连接请求
func (s *NetworkService) Connect(ctx context.Context, uid, connectionID string) (*dto.MessageResponse, error) {
	if err := s.transition(ctx, uid, connectionID, model.ConnectionSuggestion, model.ConnectionSuggestion, model.ConnectionSent); err != nil {
		return nil, err
	}
	return &dto.MessageResponse{Message: "Connection request sent."}, nil
}
