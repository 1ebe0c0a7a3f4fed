package sessions

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      Clock
	sessions map[string]*Session
}

func NewMemoryStore(ttl time.Duration, now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(s, m.now(), m.ttl)
	m.sessions[s.ID] = s.clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.lookup(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s.clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.lookup(s.ID)
	if !ok {
		return ErrNotFound
	}
	c := s.clone()
	c.CreatedAt, c.ExpiresAt = stored.CreatedAt, stored.ExpiresAt
	m.sessions[s.ID] = c
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Len reports the number of live sessions and drops expired ones.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id := range m.sessions {
		if _, ok := m.lookup(id); ok {
			n++
		}
	}
	return n
}

// lookup must be called with mu held.
func (m *MemoryStore) lookup(id string) (*Session, bool) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}
