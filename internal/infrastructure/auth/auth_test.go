package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestContext_Empty(t *testing.T) {
	c := NewContext("")

	_, err := c.Token()
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, c.Authenticated())
}

func TestContext_OpaqueTokenNeverExpires(t *testing.T) {
	c := NewContext("opaque-token")

	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
	assert.True(t, c.ExpiresAt().IsZero())
}

func TestContext_JWTExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	c := NewContext(signedToken(t, exp)).WithClock(func() time.Time { return now })

	assert.True(t, c.Authenticated())
	assert.Equal(t, exp.Unix(), c.ExpiresAt().Unix())

	c.WithClock(func() time.Time { return exp.Add(time.Second) })
	_, err := c.Token()
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestContext_InvalidateNotifiesListeners(t *testing.T) {
	c := NewContext("opaque-token")

	var reasons []string
	c.OnInvalidate(func(reason string) { reasons = append(reasons, reason) })

	c.Invalidate("401 from backend")

	assert.Equal(t, []string{"401 from backend"}, reasons)
	assert.False(t, c.Authenticated())
}

func TestContext_ClearIsSilent(t *testing.T) {
	c := NewContext("opaque-token")
	c.OnInvalidate(func(string) { t.Fatal("listener must not run on Clear") })

	c.Clear()
	assert.False(t, c.Authenticated())

	c.Set("next-token")
	assert.True(t, c.Authenticated())
}
