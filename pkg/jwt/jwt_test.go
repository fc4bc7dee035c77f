package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.GenerateToken(42, "librarian", true)
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	claims, err := m.ParseToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "librarian", claims.Username)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, token.ID, claims.ID)

	other, err := m.GenerateToken(42, "librarian", true)
	require.NoError(t, err)
	assert.NotEqual(t, token.ID, other.ID)
}

func TestManager_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)

	token, err := m.GenerateToken(1, "reader", false)
	require.NoError(t, err)

	_, err = m.ParseToken(token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestManager_WrongSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).GenerateToken(1, "reader", false)
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).ParseToken(token.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestManager_Garbage(t *testing.T) {
	_, err := NewManager("s", time.Hour).ParseToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
