package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds the live sessions in memory. Nothing survives a restart.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Gate
	onRemove []func(id string)
}

// NewStore drops sessions authenticated longer than ttl ago whenever a new
// one is added.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Gate),
	}
}

// OnRemove registers fn to run after a session leaves the store.
func (s *Store) OnRemove(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemove = append(s.onRemove, fn)
}

func (s *Store) Add(g *Gate) string {
	id := uuid.NewString()
	expired := s.prune()

	s.mu.Lock()
	s.sessions[id] = g
	s.mu.Unlock()

	s.notify(expired)
	return id
}

func (s *Store) Get(id string) (*Gate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.sessions[id]
	return g, ok
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.notify([]string{id})
	}
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) prune() []string {
	if s.ttl <= 0 {
		return nil
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	for id, g := range s.sessions {
		st := g.Status()
		if st.State != StateAuthenticated || st.AuthenticatedAt.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	return expired
}

func (s *Store) notify(ids []string) {
	if len(ids) == 0 {
		return
	}
	s.mu.RLock()
	hooks := append([]func(string){}, s.onRemove...)
	s.mu.RUnlock()
	for _, id := range ids {
		for _, fn := range hooks {
			fn(id)
		}
	}
}
