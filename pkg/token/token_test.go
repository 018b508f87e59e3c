package token

import (
	stderrors "errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProNetwork/pkg/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Minute, time.Hour)
	assert.ErrorIs(t, err, errors.ErrTokenGeneratorNotInitialized)
}

func TestGenerateAndValidateRefresh(t *testing.T) {
	m := newTestManager(t)

	pair, err := m.GenerateTokenPair("janedoe")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, 1800, pair.ExpiresIn)

	uid, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", uid)
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	m := newTestManager(t)

	pair, err := m.GenerateTokenPair("janedoe")
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidTokenType))
}

func TestRefreshTokenSignedWithOtherSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager("other-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := other.GenerateTokenPair("janedoe")
	require.NoError(t, err)

	_, err = m.ValidateRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestExpiredRefreshToken(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }

	pair, err := m.GenerateTokenPair("janedoe")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateRefreshToken(pair.RefreshToken)
	assert.True(t, stderrors.Is(err, jwtv5.ErrTokenExpired))
}
