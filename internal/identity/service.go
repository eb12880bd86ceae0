package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/weblave/weblave/internal/metrics"
)

// ErrNotConfigured is returned by every operation when no provider URL or
// key was configured.
var ErrNotConfigured = &Error{
	StatusCode: http.StatusServiceUnavailable,
	Message:    "Authentication is not configured. Set SUPABASE_URL and SUPABASE_ANON_KEY.",
}

// Authenticator is the provider surface the service needs.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, displayName string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token *oauth2.Token) error
	User(ctx context.Context, token *oauth2.Token) (*User, error)
}

// Service tracks which visitor is signed in as whom and tells subscribers
// when that changes. Sessions live only in memory.
type Service struct {
	auth     Authenticator
	watcher  *Watcher
	logger   zerolog.Logger
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService wraps auth. A nil auth yields a service whose operations fail
// with ErrNotConfigured.
func NewService(auth Authenticator, logger zerolog.Logger) *Service {
	return &Service{
		auth:     auth,
		watcher:  NewWatcher(),
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool { return s.auth != nil }

// SignUp registers an account. When the provider returns a session right
// away the visitor is signed in.
func (s *Service) SignUp(ctx context.Context, visitorID, email, password, displayName string) (*Session, error) {
	if s.auth == nil {
		return nil, ErrNotConfigured
	}
	if err := requireCredentials(email, password); err != nil {
		return nil, err
	}
	sess, err := s.auth.SignUp(ctx, email, password, displayName)
	if err != nil {
		s.record("signup", err)
		return nil, err
	}
	s.record("signup", nil)
	if sess.Token != nil {
		s.set(visitorID, sess)
	}
	return sess, nil
}

// SignIn authenticates the visitor.
func (s *Service) SignIn(ctx context.Context, visitorID, email, password string) (*Session, error) {
	if s.auth == nil {
		return nil, ErrNotConfigured
	}
	if err := requireCredentials(email, password); err != nil {
		return nil, err
	}
	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.record("signin", err)
		return nil, err
	}
	s.record("signin", nil)
	s.set(visitorID, sess)
	return sess, nil
}

// SignOut forgets the visitor's session. The provider-side logout is best
// effort; the local session is dropped either way.
func (s *Service) SignOut(ctx context.Context, visitorID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[visitorID]
	delete(s.sessions, visitorID)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	var err error
	if s.auth != nil && sess.Token != nil {
		if err = s.auth.SignOut(ctx, sess.Token); err != nil {
			s.logger.Warn().Err(err).Str("visitor", visitorID).Msg("provider sign-out failed")
		}
	}
	s.record("signout", err)
	s.watcher.Notify(visitorID, nil)
	return nil
}

// Refresh re-reads the visitor's user from the provider, dropping the
// session when the token is no longer accepted.
func (s *Service) Refresh(ctx context.Context, visitorID string) (*Session, error) {
	sess := s.Current(visitorID)
	if sess == nil || s.auth == nil || sess.Token == nil {
		return sess, nil
	}
	u, err := s.auth.User(ctx, sess.Token)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) && perr.StatusCode == http.StatusUnauthorized {
			s.mu.Lock()
			delete(s.sessions, visitorID)
			s.mu.Unlock()
			s.watcher.Notify(visitorID, nil)
			return nil, nil
		}
		return sess, err
	}
	updated := &Session{User: *u, Token: sess.Token}
	s.mu.Lock()
	s.sessions[visitorID] = updated
	s.mu.Unlock()
	return updated, nil
}

// Current returns the visitor's session or nil.
func (s *Service) Current(visitorID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[visitorID]
}

// Subscribe registers fn for the visitor's session changes.
func (s *Service) Subscribe(visitorID string, fn func(*Session)) func() {
	return s.watcher.Subscribe(visitorID, fn)
}

func (s *Service) set(visitorID string, sess *Session) {
	s.mu.Lock()
	s.sessions[visitorID] = sess
	s.mu.Unlock()
	s.watcher.Notify(visitorID, sess)
}

func (s *Service) record(event string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.AuthEvents.WithLabelValues(event, result).Inc()
}

func requireCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &Error{StatusCode: http.StatusBadRequest, Message: "Email and password are required."}
	}
	return nil
}
