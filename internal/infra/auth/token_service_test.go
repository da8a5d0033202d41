package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatekeeper/config"
	"gatekeeper/internal/domain/service"
)

func newAuthConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{
		AccessSecret:    secret,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}

	return cfg
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(newAuthConfig(""))
	assert.Error(t, err)

	svc, err := NewTokenService(newAuthConfig("test-secret"))
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestTokenService_GenerateAccessToken(t *testing.T) {
	svc, err := NewTokenService(newAuthConfig("test-secret"))
	require.NoError(t, err)

	accountID := uuid.New()
	token, expiresAt, err := svc.GenerateAccessToken(accountID, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims := &service.AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, accountID.String(), claims.Subject)
}

func TestTokenService_AccessTokenRejectsWrongSecret(t *testing.T) {
	svc, err := NewTokenService(newAuthConfig("test-secret"))
	require.NoError(t, err)

	token, _, err := svc.GenerateAccessToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(token, &service.AccessClaims{}, func(t *jwt.Token) (any, error) {
		return []byte("another-secret"), nil
	})
	assert.Error(t, err)
}

func TestTokenService_ParseAccessToken(t *testing.T) {
	svc, err := NewTokenService(newAuthConfig("test-secret"))
	require.NoError(t, err)

	accountID := uuid.New()
	token, _, err := svc.GenerateAccessToken(accountID, "user@example.com")
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.Equal(t, "user@example.com", claims.Email)

	_, err = svc.ParseAccessToken(token + "tampered")
	assert.Error(t, err)

	otherSvc, err := NewTokenService(newAuthConfig("another-secret"))
	require.NoError(t, err)
	_, err = otherSvc.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestTokenService_GenerateRefreshToken(t *testing.T) {
	svc, err := NewTokenService(newAuthConfig("test-secret"))
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 32; i++ {
		raw, err := svc.GenerateRefreshToken()
		require.NoError(t, err)
		require.NotEmpty(t, raw)

		_, dup := seen[raw]
		assert.False(t, dup, "refresh token values must not repeat")
		seen[raw] = struct{}{}
	}
}

func TestTokenService_HashTokenIsDeterministic(t *testing.T) {
	svc, err := NewTokenService(newAuthConfig("test-secret"))
	require.NoError(t, err)

	raw, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	hash := svc.HashToken(raw)
	assert.Equal(t, hash, svc.HashToken(raw))
	assert.NotEqual(t, hash, svc.HashToken(raw+"x"))
	assert.Len(t, hash, 64)
}

func TestTokenService_Durations(t *testing.T) {
	svc, err := NewTokenService(newAuthConfig("test-secret"))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, svc.AccessTokenDuration())
	assert.Equal(t, 7*24*time.Hour, svc.RefreshTokenDuration())
}
