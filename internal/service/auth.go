package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ProNetwork/internal/backend"
	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/utils"
)

const (
	DashboardPath = "/dashboard"

	resetLinkSent = "If an account with this email exists, a reset link has been sent."
)

type AuthService struct {
	deps Deps
}

// Login 用后端账号登录
//
// 后端 token 只保存在服务端（加密后存入 token store 的 access_token），
// 前端拿到的是本服务签发的 JWT。首次登录时为该用户写入演示数据。
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, errors.CredentialsMissing
	}

	res, err := s.deps.Backend.Login(ctx, username, req.Password)
	if err != nil {
		var be *backend.Error
		if stderrors.As(err, &be) {
			if be.Status == 0 {
				return nil, errors.BackendUnavailable.WithMessage(be.Message)
			}
			return nil, errors.LoginFailed.WithMessage(be.Message)
		}
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	uid := username
	snapshot := dto.AuthUserSnapshot{Username: username}
	if res.User != nil {
		if res.User.Username != "" {
			uid = res.User.Username
		}
		snapshot = dto.AuthUserSnapshot{
			Username:  uid,
			Email:     res.User.Email,
			FirstName: res.User.FirstName,
			LastName:  res.User.LastName,
			Role:      res.User.Role,
		}
	}

	if err := s.deps.Tokens.SetBackendToken(ctx, uid, res.Token); err != nil {
		return nil, fmt.Errorf("failed to store backend token: %w", err)
	}

	if err := s.deps.Store.SeedCatalog(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed jobs: %w", err)
	}
	if err := s.deps.Store.SeedOwner(ctx, uid); err != nil {
		return nil, fmt.Errorf("failed to seed user data: %w", err)
	}

	pair, err := s.deps.JWT.GenerateTokenPair(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.deps.Tokens.SetRefreshToken(ctx, uid, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	// 旧的资料缓存可能属于上一次登录的 token
	if err := s.deps.Profiles.Delete(ctx, uid); err != nil {
		logger.Logger.Warn("Failed to drop profile cache", zap.String("uid", uid), zap.Error(err))
	}

	logger.Logger.Info("User signed in", zap.String("uid", uid))

	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         snapshot,
		Redirect:     DashboardPath,
	}, nil
}

// RefreshToken 轮换 token 对，refresh token 必须与保存的一致
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if refreshToken == "" {
		return nil, errors.RefreshTokenInvalid
	}

	uid, err := s.deps.JWT.ValidateRefreshToken(refreshToken)
	if err != nil {
		logger.Logger.Debug("Refresh token rejected", zap.Error(err))
		return nil, errors.RefreshTokenInvalid
	}

	ok, err := s.deps.Tokens.ValidateRefreshToken(ctx, uid, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to validate refresh token: %w", err)
	}
	if !ok {
		return nil, errors.RefreshTokenInvalid
	}

	pair, err := s.deps.JWT.GenerateTokenPair(uid)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.deps.Tokens.SetRefreshToken(ctx, uid, pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Logout 删除 refresh token 和后端 token，已签发的 access token 自然过期
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	if err := s.deps.Tokens.Revoke(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	if err := s.deps.Profiles.Delete(ctx, uid); err != nil {
		logger.Logger.Warn("Failed to drop profile cache", zap.String("uid", uid), zap.Error(err))
	}

	logger.Logger.Info("User signed out", zap.String("uid", uid))
	return nil
}

// ForgotPassword 无论邮箱是否存在都返回同样的提示，事件里只带邮箱 hash
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*dto.MessageResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.EmailRequired
	}
	if !utils.ValidateEmail(email) {
		return nil, errors.EmailInvalid
	}

	publish(ctx, s.deps.Publisher, model.EventPasswordResetRequested, model.PasswordResetPayload{
		EmailHash: utils.HashEmail(s.deps.EmailHashSalt, email),
	})

	return &dto.MessageResponse{Message: resetLinkSent}, nil
}
