package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps encoded sessions in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	logger   *zap.Logger
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry),
		logger:   logger,
		now:      time.Now,
	}
}

// StartCleanup removes expired sessions every interval until Close
func (m *MemoryStore) StartCleanup(interval time.Duration) {
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.cleanupExpired()
			case <-m.stop:
				return
			}
		}
	}()
}

// Close stops the cleanup goroutine
func (m *MemoryStore) Close() error {
	if m.stop != nil {
		close(m.stop)
		<-m.done
		m.stop = nil
	}
	return nil
}

// Load retrieves a session
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return decode(e.data)
}

// Save stores a session until its expiry
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sessions[s.ID] = entry{data: data, expiresAt: s.ExpiresAt}
	m.mu.Unlock()
	return nil
}

// Delete removes a session
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Update applies fn under the store lock
func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	s, err := decode(e.data)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}

	data, err := encode(s)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = entry{data: data, expiresAt: s.ExpiresAt}
	return s, nil
}

// Len returns the number of stored sessions, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.sessions {
		if !now.Before(e.expiresAt) {
			delete(m.sessions, id)
			m.logger.Debug("Cleaned up expired session", zap.String("session_id", id))
		}
	}
}
