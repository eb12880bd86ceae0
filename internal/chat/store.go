package chat

import "sync"

// Store holds one Session per visitor for the life of the process.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	accept   []string
}

// NewStore creates an empty store whose sessions use the given accept globs.
func NewStore(accept []string) *Store {
	return &Store{sessions: make(map[string]*Session), accept: accept}
}

// Get returns the visitor's session, creating it on first use.
func (st *Store) Get(visitorID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[visitorID]
	if !ok {
		s = NewSession(st.accept)
		st.sessions[visitorID] = s
	}
	return s
}

// Delete discards the visitor's session.
func (st *Store) Delete(visitorID string) {
	st.mu.Lock()
	delete(st.sessions, visitorID)
	st.mu.Unlock()
}

// Len reports how many sessions are live.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
