package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	proposalapp "github.com/tierquote/backend/internal/application/proposal"
)

// InMemorySessionStore implements SessionStore with a process-local map.
// Suitable for single-instance deployments and tests. State is lost on
// restart, which only costs dwell-time precision for in-flight sessions.
type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	seconds   int64
	touchedAt time.Time
}

// NewInMemorySessionStore creates a new in-memory session store
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]*sessionEntry),
	}
}

// Ensure InMemorySessionStore implements SessionStore
var _ proposalapp.SessionStore = (*InMemorySessionStore)(nil)

// Touch accumulates viewing time for one session on one proposal
func (s *InMemorySessionStore) Touch(ctx context.Context, estimateID uuid.UUID, sessionID string, duration time.Duration) error {
	key := estimateID.String() + ":" + sessionID

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[key]
	if !ok {
		entry = &sessionEntry{}
		s.sessions[key] = entry
	}
	entry.seconds += int64(duration.Seconds())
	entry.touchedAt = time.Now()

	s.evictStaleLocked()
	return nil
}

// DwellTime returns the accumulated viewing time for one session
func (s *InMemorySessionStore) DwellTime(ctx context.Context, estimateID uuid.UUID, sessionID string) (time.Duration, error) {
	key := estimateID.String() + ":" + sessionID

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[key]
	if !ok {
		return 0, nil
	}
	return time.Duration(entry.seconds) * time.Second, nil
}

// evictStaleLocked drops sessions idle past the TTL. Caller holds the lock.
func (s *InMemorySessionStore) evictStaleLocked() {
	cutoff := time.Now().Add(-sessionTTL)
	for key, entry := range s.sessions {
		if entry.touchedAt.Before(cutoff) {
			delete(s.sessions, key)
		}
	}
}
