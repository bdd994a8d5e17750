// Package session provides server-side session storage for the web frontend
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lastcallsoftware/trackeats/internal/domain/nutrition"
)

var (
	// ErrNotFound is returned for unknown or expired sessions
	ErrNotFound = errors.New("session not found")
	// ErrConflict is returned when a session kept changing underneath an update
	ErrConflict = errors.New("session modified concurrently")
)

// Session represents a user session
type Session struct {
	ID              string                      `json:"id"`
	Username        string                      `json:"username,omitempty"`
	AccessToken     string                      `json:"access_token,omitempty"`
	PendingUsername string                      `json:"pending_username,omitempty"`
	Flash           string                      `json:"flash,omitempty"`
	Generation      uint64                      `json:"generation"`
	Drafts          map[string]*nutrition.Draft `json:"drafts,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	ExpiresAt       time.Time                   `json:"expires_at"`
}

// Store persists sessions. Every Load returns a private copy; changes
// become visible to other requests only through Save or Update.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Update runs fn on the current session and saves the result
	// atomically. If fn returns an error nothing is saved.
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
}

// New creates a session that lives for ttl
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Drafts:    make(map[string]*nutrition.Draft),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session has outlived its TTL
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LogIn records a fresh token. Drafts belong to a user, so logging in as
// someone else drops them.
func (s *Session) LogIn(username, token string) {
	if s.Username != username {
		s.Drafts = make(map[string]*nutrition.Draft)
	}
	s.Username = username
	s.AccessToken = token
}

// LogOut clears the token and every draft
func (s *Session) LogOut() {
	s.Username = ""
	s.AccessToken = ""
	s.Drafts = make(map[string]*nutrition.Draft)
}

// InvalidateToken drops the token the backend rejected. Drafts are kept so
// work survives logging in again.
func (s *Session) InvalidateToken(message string) {
	s.AccessToken = ""
	s.Flash = message
}

// Draft returns the open draft with the given id
func (s *Session) Draft(id string) (*nutrition.Draft, bool) {
	d, ok := s.Drafts[id]
	return d, ok
}

// PutDraft adds or replaces a draft
func (s *Session) PutDraft(d *nutrition.Draft) {
	if s.Drafts == nil {
		s.Drafts = make(map[string]*nutrition.Draft)
	}
	s.Drafts[d.ID] = d
}

// DeleteDraft closes a draft
func (s *Session) DeleteDraft(id string) {
	delete(s.Drafts, id)
}

// BeginLoad bumps the generation and returns it. A load started under an
// older generation must not be applied.
func (s *Session) BeginLoad() uint64 {
	s.Generation++
	return s.Generation
}

// TakeFlash returns the flash message and clears it
func (s *Session) TakeFlash() string {
	msg := s.Flash
	s.Flash = ""
	return msg
}

func encode(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Drafts == nil {
		s.Drafts = make(map[string]*nutrition.Draft)
	}
	return &s, nil
}
