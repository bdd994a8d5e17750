// Package auth holds the bearer token a user session presents to the
// backend API.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when no one is logged in
	ErrNoToken = errors.New("not logged in")
	// ErrTokenExpired is returned when the token's exp claim has passed
	ErrTokenExpired = errors.New("login expired")
)

// Context carries one session's access token. It is safe for concurrent use.
//
// The backend issues JWTs; the exp claim is read without verifying the
// signature so an expired login can be detected before a round trip. Tokens
// that are not JWTs are accepted and never expire locally.
type Context struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	listeners []func(reason string)
	now       func() time.Time
}

// NewContext creates a context holding token, which may be empty.
func NewContext(token string) *Context {
	c := &Context{now: time.Now}
	c.Set(token)
	return c
}

// Set stores a freshly issued token.
func (c *Context) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiresAt = expiry(token)
}

// Token returns the bearer token, or an error when there is none or it has
// expired.
func (c *Context) Token() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", ErrNoToken
	}
	if !c.expiresAt.IsZero() && !c.now().Before(c.expiresAt) {
		return "", ErrTokenExpired
	}
	return c.token, nil
}

// Authenticated reports whether Token would succeed.
func (c *Context) Authenticated() bool {
	_, err := c.Token()
	return err == nil
}

// ExpiresAt returns the token's exp claim, or the zero time if unknown.
func (c *Context) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// OnInvalidate registers fn to run when the backend rejects the token.
func (c *Context) OnInvalidate(fn func(reason string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Invalidate drops the token and notifies listeners. It is called when the
// backend answers 401.
func (c *Context) Invalidate(reason string) {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	listeners := make([]func(string), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(reason)
	}
}

// Clear drops the token without notifying listeners. Used on logout.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

// WithClock replaces the time source. Used by tests.
func (c *Context) WithClock(now func() time.Time) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func expiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
