package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	token, err := mgr.Issue("user-123", "volunteer", time.Now())
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "volunteer", claims.Role)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", time.Minute)

	token, err := mgr.Issue("user-123", "donor", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestManager_RejectsWrongKey(t *testing.T) {
	token, err := NewManager("key-one", time.Hour).Issue("user-123", "donor", time.Now())
	require.NoError(t, err)

	_, err = NewManager("key-two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestManager_RejectsGarbage(t *testing.T) {
	_, err := NewManager("test-secret", time.Hour).ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
