package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionManager_GenerateAndVerify(t *testing.T) {
	sessionManager := NewSessionManager()

	token, err := sessionManager.GenerateSessionToken("user-1", defaultSessionTokenDuration)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, err := sessionManager.VerifySessionToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestSessionManager_UnknownToken(t *testing.T) {
	sessionManager := NewSessionManager()

	_, err := sessionManager.VerifySessionToken("does-not-exist")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestSessionManager_ExpiredToken(t *testing.T) {
	sessionManager := NewSessionManager()

	token, err := sessionManager.GenerateSessionToken("user-1", -time.Minute)
	assert.NoError(t, err)

	_, err = sessionManager.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrExpiredSessionToken)
}

func TestSessionManager_DeleteToken(t *testing.T) {
	sessionManager := NewSessionManager()

	token, err := sessionManager.GenerateSessionToken("user-1", defaultSessionTokenDuration)
	assert.NoError(t, err)

	sessionManager.DeleteSessionToken(token)

	_, err = sessionManager.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestSessionManager_CleanupRemovesExpiredTokens(t *testing.T) {
	sessionManager := NewSessionManager()
	defer sessionManager.StopSessionTokenCleanup()

	expired, err := sessionManager.GenerateSessionToken("user-1", -time.Minute)
	assert.NoError(t, err)
	valid, err := sessionManager.GenerateSessionToken("user-2", time.Hour)
	assert.NoError(t, err)

	sessionManager.StartSessionTokenCleanup(10 * time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, err = sessionManager.VerifySessionToken(expired)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	userID, err := sessionManager.VerifySessionToken(valid)
	assert.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}
