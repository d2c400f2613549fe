package repository

import (
	"context"
	"sync"
	"time"

	"github.com/glunkad/invoice-service/internal/domain"
)

// MemoryStateRepository is the default session store. Sessions idle longer
// than ttl are dropped on the next Get, and abandoned ones by a sweep that
// Save runs at most once per ttl.
type MemoryStateRepository struct {
	mu        sync.Mutex
	sessions  map[domain.SessionKey]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type memoryEntry struct {
	session domain.Session
	savedAt time.Time
}

// NewMemoryStateRepository creates an in-memory store. A zero ttl keeps
// sessions until they are deleted.
func NewMemoryStateRepository(ttl time.Duration, now func() time.Time) *MemoryStateRepository {
	if now == nil {
		now = time.Now
	}
	return &MemoryStateRepository{
		sessions: make(map[domain.SessionKey]memoryEntry),
		ttl:      ttl,
		now:      now,
	}
}

// Get returns the session of key unless it has expired.
func (m *MemoryStateRepository) Get(_ context.Context, key domain.SessionKey) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if m.ttl > 0 && m.now().Sub(entry.savedAt) > m.ttl {
		delete(m.sessions, key)
		return nil, domain.ErrSessionNotFound
	}

	// Shallow copy: draft fields are replaced on update, never written through.
	session := entry.session
	return &session, nil
}

// Save stores a copy of session and restarts its idle timer.
func (m *MemoryStateRepository) Save(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.ttl > 0 && now.Sub(m.lastSweep) >= m.ttl {
		m.sweep(now)
	}

	m.sessions[session.Key] = memoryEntry{session: *session, savedAt: now}
	return nil
}

// sweep drops expired sessions. Callers hold mu.
func (m *MemoryStateRepository) sweep(now time.Time) {
	for key, entry := range m.sessions {
		if now.Sub(entry.savedAt) > m.ttl {
			delete(m.sessions, key)
		}
	}
	m.lastSweep = now
}

// Delete removes the session of key.
func (m *MemoryStateRepository) Delete(_ context.Context, key domain.SessionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, key)
	return nil
}

// Len reports the number of stored sessions, including expired ones not yet
// swept.
func (m *MemoryStateRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
