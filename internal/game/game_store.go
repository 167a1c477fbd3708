// internal/game/game_store.go
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrSessionNotFound is returned when a session id is not in the store.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps every live table in memory, keyed by session id.
type SessionStore struct {
	mu     sync.Mutex
	tables map[uuid.UUID]*Table
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		tables: make(map[uuid.UUID]*Table),
	}
}

func (s *SessionStore) AddTable(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.ID] = t
}

func (s *SessionStore) GetTable(id uuid.UUID) (*Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, exists := s.tables[id]
	return t, exists
}

func (s *SessionStore) DeleteTable(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, id)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tables)
}

// TablesForOwner returns every table owned by ownerID.
func (s *SessionStore) TablesForOwner(ownerID uuid.UUID) []*Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Table
	for _, t := range s.tables {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out
}

// EvictIdle removes tables not used since cutoff and returns their ids.
func (s *SessionStore) EvictIdle(cutoff time.Time) []uuid.UUID {
	s.mu.Lock()
	candidates := make([]*Table, 0, len(s.tables))
	for _, t := range s.tables {
		candidates = append(candidates, t)
	}
	s.mu.Unlock()

	var evicted []uuid.UUID
	for _, t := range candidates {
		if t.LastSeen().Before(cutoff) {
			s.DeleteTable(t.ID)
			evicted = append(evicted, t.ID)
		}
	}
	return evicted
}

// RunJanitor evicts idle tables every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, idle, interval time.Duration, logger logrus.FieldLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, id := range s.EvictIdle(now.Add(-idle)) {
				logger.WithField("session", id).Info("evicted idle session")
			}
		}
	}
}
