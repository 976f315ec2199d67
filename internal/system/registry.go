package system

import (
	"sync"

	"starsystem-server/internal/shared/errors"

	"github.com/google/uuid"
)

// Registry holds the sessions served from memory, at most max of them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	max      int
}

func NewRegistry(max int) *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session), max: max}
}

func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Put stores s unless a session with the same id is already held, in which
// case the held session is returned instead.
func (r *Registry) Put(s *Session) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[s.ID]; ok {
		return existing, nil
	}
	if len(r.sessions) >= r.max {
		return nil, errors.CapacityExceededf("server already holds the maximum of %d star systems", r.max)
	}
	r.sessions[s.ID] = s
	return s, nil
}

func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
