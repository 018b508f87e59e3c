package token

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"ProNetwork/config"
	"ProNetwork/pkg/errors"
)

const (
	IdentityKey = "uid"
)

// Pair 是签发给前端的一组 token
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// Manager 负责签发和校验本服务自己的 JWT（与后端 token 无关）
type Manager struct {
	now        func() time.Time
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.ErrTokenGeneratorNotInitialized
	}

	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// FromConfig 按 config.Cfg 构建 Manager
func FromConfig() (*Manager, error) {
	return NewManager(
		config.Cfg.JWTSecret,
		time.Duration(config.Cfg.JWTExpireMinutes)*time.Minute,
		time.Duration(config.Cfg.JWTRefreshDays)*24*time.Hour,
	)
}

func (m *Manager) Secret() []byte { return m.secret }

func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// GenerateTokenPair 生成 access token 和 refresh token
func (m *Manager) GenerateTokenPair(userID string) (Pair, error) {
	now := m.now()
	expiresAt := now.Add(m.accessTTL)

	accessClaims := jwtv5.MapClaims{
		IdentityKey: userID,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}

	accessToken, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, accessClaims).SignedString(m.secret)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	// refresh token 多一个 type 声明，避免被当作 access token 使用
	refreshClaims := jwtv5.MapClaims{
		IdentityKey: userID,
		"iat":       now.Unix(),
		"type":      "refresh",
		"jti":       fmt.Sprintf("%d", now.UnixNano()),
		"exp":       now.Add(m.refreshTTL).Unix(),
	}

	refreshToken, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, refreshClaims).SignedString(m.secret)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresIn := int(expiresAt.Sub(now).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	return Pair{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresIn: expiresIn}, nil
}

// ValidateRefreshToken 验证 refresh token 并返回用户 ID
func (m *Manager) ValidateRefreshToken(tokenString string) (string, error) {
	parsed, err := jwtv5.ParseWithClaims(tokenString, jwtv5.MapClaims{}, func(t *jwtv5.Token) (interface{}, error) {
		if t.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("%w: %v, expected HS256", errors.ErrUnexpectedSigningMethod, t.Header["alg"])
		}
		return m.secret, nil
	}, jwtv5.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !parsed.Valid {
		return "", errors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", errors.ErrInvalidTokenClaims
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "refresh" {
		return "", errors.ErrInvalidTokenType
	}

	uid, ok := claims[IdentityKey].(string)
	if !ok || uid == "" {
		return "", errors.ErrUserIDNotFound
	}

	return uid, nil
}
