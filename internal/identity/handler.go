package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weblave/weblave/internal/visitor"
)

type ctxKey struct{}

// Middleware puts the visitor's session (possibly nil) on the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.Current(visitor.ID(r.Context()))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

// FromContext returns the session stored by Middleware.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(ctxKey{}).(*Session)
	return sess
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type sessionResponse struct {
	SignedIn bool   `json:"signed_in"`
	User     *User  `json:"user,omitempty"`
	Pending  bool   `json:"confirmation_pending,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RegisterRoutes mounts the JSON auth endpoints.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/signup", s.handleSignUp)
	r.Post("/api/auth/signin", s.handleSignIn)
	r.Post("/api/auth/signout", s.handleSignOut)
	r.Get("/api/auth/session", s.handleSession)
}

func (s *Service) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, sessionResponse{Error: "invalid request body"})
		return
	}
	sess, err := s.SignUp(r.Context(), visitor.ID(r.Context()), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: sess.Token != nil, User: &sess.User, Pending: sess.Token == nil})
}

func (s *Service) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, sessionResponse{Error: "invalid request body"})
		return
	}
	sess, err := s.SignIn(r.Context(), visitor.ID(r.Context()), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true, User: &sess.User})
}

func (s *Service) handleSignOut(w http.ResponseWriter, r *http.Request) {
	_ = s.SignOut(r.Context(), visitor.ID(r.Context()))
	writeJSON(w, http.StatusOK, sessionResponse{})
}

func (s *Service) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := s.Current(visitor.ID(r.Context()))
	if sess == nil {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SignedIn: true, User: &sess.User})
}

// ErrorMessage returns the text to show the visitor for err.
func ErrorMessage(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	return "An unexpected error occurred. Please try again."
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var perr *Error
	if errors.As(err, &perr) && perr.StatusCode >= 400 {
		status = perr.StatusCode
	}
	writeJSON(w, status, sessionResponse{Error: ErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
