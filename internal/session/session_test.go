package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestNew(t *testing.T) {
	t.Parallel()

	uid, ok := New("u1").CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	_, ok = New("").CurrentUserID()
	assert.False(t, ok)

	var nilSession *Session
	_, ok = nilSession.CurrentUserID()
	assert.False(t, ok)
}

func TestFromIDToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("user_id claim", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{
			"user_id": "u1",
			"sub":     "ignored-when-user_id-present",
			"exp":     now.Add(time.Hour).Unix(),
		})
		sess, err := FromIDToken(token, now)
		require.NoError(t, err)
		uid, ok := sess.CurrentUserID()
		assert.True(t, ok)
		assert.Equal(t, "u1", uid)
	})

	t.Run("sub fallback", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "u2", "exp": now.Add(time.Hour).Unix()})
		sess, err := FromIDToken(token, now)
		require.NoError(t, err)
		uid, _ := sess.CurrentUserID()
		assert.Equal(t, "u2", uid)
	})

	t.Run("expired", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(-time.Minute).Unix()})
		_, err := FromIDToken(token, now)
		assert.ErrorContains(t, err, "expired")
	})

	t.Run("no identity claim", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
		_, err := FromIDToken(token, now)
		assert.ErrorContains(t, err, "no user identity")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := FromIDToken("not-a-jwt", now)
		assert.Error(t, err)
	})
}
