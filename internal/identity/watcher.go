package identity

import "sync"

// Watcher fans session changes out to per-visitor subscribers.
type Watcher struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(*Session)
}

// NewWatcher creates a watcher with no subscribers.
func NewWatcher() *Watcher {
	return &Watcher{subs: make(map[string]map[int]func(*Session))}
}

// Subscribe registers fn for the visitor's session changes. A nil session
// means signed out. The returned func unsubscribes and is safe to call twice.
func (w *Watcher) Subscribe(visitorID string, fn func(*Session)) func() {
	w.mu.Lock()
	id := w.nextID
	w.nextID++
	if w.subs[visitorID] == nil {
		w.subs[visitorID] = make(map[int]func(*Session))
	}
	w.subs[visitorID][id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.subs[visitorID], id)
			if len(w.subs[visitorID]) == 0 {
				delete(w.subs, visitorID)
			}
		})
	}
}

// Notify calls every subscriber of visitorID with s.
func (w *Watcher) Notify(visitorID string, s *Session) {
	w.mu.Lock()
	fns := make([]func(*Session), 0, len(w.subs[visitorID]))
	for _, fn := range w.subs[visitorID] {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Subscribers reports how many callbacks are registered for visitorID.
func (w *Watcher) Subscribers(visitorID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs[visitorID])
}
