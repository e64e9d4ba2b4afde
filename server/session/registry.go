package session

import "sync"

// Registry is the Clients Registry: a many-reader map from client id to
// Session. The Network Drain step adds sessions and the disconnect handler
// removes them, both on the tick goroutine; every other system reads a
// consistent snapshot within a tick.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
}

// NewRegistry returns an empty Clients Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uint64]*Session)}
}

// Add registers a newly connected session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Remove deletes a session, called when its connection is reported closed.
func (r *Registry) Remove(id uint64) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Get returns the session for id, if connected.
func (r *Registry) Get(id uint64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// ByLogin returns the session whose ClientInfo.Login matches login, used
// by `kick <login>` and login-uniqueness checks.
func (r *Registry) ByLogin(login string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if info, ok := s.Info(); ok && info.Login == login {
			return s, true
		}
	}
	return nil, false
}

// All returns every currently registered session. The returned slice is a
// snapshot; callers must not assume it stays fresh across later Add/Remove
// calls.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len returns the current number of connected sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
