package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evseenkov/swapwear-backend/internal/models"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestTokenManager()
	userID := uuid.New()

	token, err := m.NewAccessToken(userID, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAccessToken_Expired(t *testing.T) {
	m := NewTokenManager("test-access-secret", "test-refresh-secret", -time.Minute, 24*time.Hour)

	token, err := m.NewAccessToken(uuid.New(), models.RoleUser)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	m := newTestTokenManager()
	other := NewTokenManager("different-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	token, err := m.NewAccessToken(uuid.New(), models.RoleUser)
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	m := newTestTokenManager()
	userID := uuid.New()

	token, expiresAt, err := m.NewRefreshToken(userID)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	parsed, err := m.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

// Access-токен не проходит как refresh: подписи разными секретами.
func TestRefreshToken_NotInterchangeable(t *testing.T) {
	m := newTestTokenManager()

	access, err := m.NewAccessToken(uuid.New(), models.RoleUser)
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)
}
