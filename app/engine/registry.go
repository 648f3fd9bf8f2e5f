package engine

import "sync"

// Registry maps room ids to live sessions. It is injected wherever rooms
// are created or looked up; sessions themselves know nothing about it.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Session)}
}

func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[s.Id] = s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.rooms[id]
	return s, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
