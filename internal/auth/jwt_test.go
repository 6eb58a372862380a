package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestJWTManager(t *testing.T) JWTManagerInterface {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	return NewJWTManager()
}

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	jwtManager := newTestJWTManager(t)

	token, err := jwtManager.GenerateAccessJWT("user-1", defaultJWTDuration)
	assert.NoError(t, err)

	userID, err := jwtManager.ValidateAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTManager_ExpiredAccessToken(t *testing.T) {
	jwtManager := newTestJWTManager(t)

	token, err := jwtManager.GenerateAccessJWT("user-1", -time.Minute)
	assert.NoError(t, err)

	_, err = jwtManager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredJWTToken)
}

func TestJWTManager_GarbageAccessToken(t *testing.T) {
	jwtManager := newTestJWTManager(t)

	_, err := jwtManager.ValidateAccessToken("not-a-jwt")
	assert.Error(t, err)
}

func TestJWTManager_RefreshTokenBoundToHashToken(t *testing.T) {
	jwtManager := newTestJWTManager(t)

	token, err := jwtManager.GenerateRefreshJWT("user-1", "hash-token-v1", defaultJWTRefreshDuration)
	assert.NoError(t, err)

	assert.NoError(t, jwtManager.ValidateRefreshToken(token, "hash-token-v1"))

	// rotating the hash token must invalidate previously issued refresh tokens
	err = jwtManager.ValidateRefreshToken(token, "hash-token-v2")
	assert.ErrorIs(t, err, ErrInvalidJWTToken)
}

func TestJWTManager_ExtractUserIDFromRefreshToken(t *testing.T) {
	jwtManager := newTestJWTManager(t)

	token, err := jwtManager.GenerateRefreshJWT("user-1", "hash-token-v1", defaultJWTRefreshDuration)
	assert.NoError(t, err)

	userID, err := jwtManager.ExtractUserIDFromRefreshToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}
