package chatbot

import (
	"sync"

	"github.com/weblave/weblave/internal/rules"
)

// DefaultWelcome greets visitors of a new bot.
const DefaultWelcome = "Hello! How can I help you today?"

// Draft is a bot being edited on the generator page.
type Draft struct {
	Config
	UseAI bool `json:"useAI"`
}

// NewDraft returns an empty draft.
func NewDraft() Draft {
	return Draft{Config: Config{WelcomeMessage: DefaultWelcome, Commands: rules.Table{}}}
}

// SetAI toggles AI replies. Turning them off forgets the key.
func (d *Draft) SetAI(on bool) {
	d.UseAI = on
	if !on {
		d.APIKey = ""
	}
}

// Bot is the config the draft would export.
func (d Draft) Bot() Config {
	cfg := d.Config
	cfg.Commands = append(rules.Table{}, d.Commands...)
	if !d.UseAI {
		cfg.APIKey = ""
	}
	return cfg
}

// Drafts holds one draft per visitor in memory.
type Drafts struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

// NewDrafts creates an empty draft store.
func NewDrafts() *Drafts {
	return &Drafts{drafts: make(map[string]*Draft)}
}

// Get returns a copy of the visitor's draft.
func (s *Drafts) Get(visitorID string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft(visitorID).copy()
}

// Update applies fn to the visitor's draft under the store lock. If fn fails
// the draft is left unchanged.
func (s *Drafts) Update(visitorID string, fn func(*Draft) error) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.draft(visitorID)
	next := current.copy()
	if err := fn(&next); err != nil {
		return current.copy(), err
	}
	*current = next
	return next.copy(), nil
}

// Reset discards the visitor's draft.
func (s *Drafts) Reset(visitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, visitorID)
}

func (s *Drafts) draft(visitorID string) *Draft {
	d, ok := s.drafts[visitorID]
	if !ok {
		nd := NewDraft()
		d = &nd
		s.drafts[visitorID] = d
	}
	return d
}

func (d *Draft) copy() Draft {
	out := *d
	out.Commands = append(rules.Table{}, d.Commands...)
	return out
}
