package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ProNetwork/utils"
)

const tokenPrefix = "token"

// BackendTokenKey 后端 token 在 token store 中的名字
const BackendTokenKey = "access_token"

// TokenStore 保存本服务签发的 refresh token 和后端返回的 token
//
// Key: token:refresh:{uid}、token:access_token:{uid}
type TokenStore struct {
	kv         KV
	key        []byte
	refreshTTL time.Duration
}

func NewTokenStore(kv KV, encryptionKey []byte, refreshTTL time.Duration) *TokenStore {
	return &TokenStore{kv: kv, key: encryptionKey, refreshTTL: refreshTTL}
}

func refreshKey(uid string) string {
	return tokenPrefix + ":refresh:" + uid
}

func backendKey(uid string) string {
	return tokenPrefix + ":" + BackendTokenKey + ":" + uid
}

func (s *TokenStore) SetRefreshToken(ctx context.Context, uid, refreshToken string) error {
	return s.kv.Set(ctx, refreshKey(uid), []byte(refreshToken), s.refreshTTL)
}

// ValidateRefreshToken 检查 refresh token 是否存在且与最近一次签发的一致
func (s *TokenStore) ValidateRefreshToken(ctx context.Context, uid, refreshToken string) (bool, error) {
	stored, err := s.kv.Get(ctx, refreshKey(uid))
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return string(stored) == refreshToken, nil
}

// SetBackendToken 加密后保存后端 token，生命周期跟随 refresh token
func (s *TokenStore) SetBackendToken(ctx context.Context, uid, backendToken string) error {
	sealed, err := utils.EncryptToken(s.key, backendToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt backend token: %w", err)
	}
	return s.kv.Set(ctx, backendKey(uid), []byte(sealed), s.refreshTTL)
}

// BackendToken 返回解密后的后端 token，不存在时返回 ErrMiss
func (s *TokenStore) BackendToken(ctx context.Context, uid string) (string, error) {
	sealed, err := s.kv.Get(ctx, backendKey(uid))
	if err != nil {
		return "", err
	}
	plain, err := utils.DecryptToken(s.key, string(sealed))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt backend token: %w", err)
	}
	return plain, nil
}

// Revoke 登出时删除该用户的全部 token
func (s *TokenStore) Revoke(ctx context.Context, uid string) error {
	return s.kv.Del(ctx, refreshKey(uid), backendKey(uid))
}
