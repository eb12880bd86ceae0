package identity

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/weblave/weblave/internal/visitor"
)

const testAnonKey = "anon-key"

// fakeGoTrue is a minimal stand-in for the provider's auth API.
type fakeGoTrue struct {
	mu         sync.Mutex
	logouts    int
	lastBearer string
	confirm    bool
}

func (f *fakeGoTrue) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != testAnonKey {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"No API key found in request"}`)
		return
	}
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/signup":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "taken@example.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			io.WriteString(w, `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`)
			return
		}
		data, _ := body["data"].(map[string]any)
		name, _ := data["name"].(string)
		if f.confirm {
			io.WriteString(w, `{"id":"u-2","email":"`+body["email"].(string)+`","user_metadata":{"name":"`+name+`"}}`)
			return
		}
		io.WriteString(w, `{"access_token":"tok-new","token_type":"bearer","expires_in":3600,"refresh_token":"r","user":{"id":"u-2","email":"`+body["email"].(string)+`","user_metadata":{"name":"`+name+`"}}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/token":
		if r.URL.Query().Get("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"unsupported_grant_type"}`)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`)
			return
		}
		io.WriteString(w, `{"access_token":"tok-1","token_type":"bearer","expires_in":3600,"refresh_token":"r","user":{"id":"u-1","email":"ada@example.com","user_metadata":{"name":"Ada"}}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/logout":
		f.mu.Lock()
		f.logouts++
		f.lastBearer = r.Header.Get("Authorization")
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/user":
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"msg":"invalid JWT"}`)
			return
		}
		io.WriteString(w, `{"id":"u-1","email":"ada@example.com","user_metadata":{"name":"Ada L."}}`)
	default:
		http.NotFound(w, r)
	}
}

func newFake(t *testing.T) (*fakeGoTrue, *Client) {
	t.Helper()
	fake := &fakeGoTrue{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, NewClient(srv.URL+"/", testAnonKey)
}

func TestClientSignIn(t *testing.T) {
	_, c := newFake(t)

	sess, err := c.SignIn(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.User.ID != "u-1" || sess.User.DisplayName != "Ada" {
		t.Errorf("unexpected user: %+v", sess.User)
	}
	if sess.Token == nil || sess.Token.AccessToken != "tok-1" {
		t.Fatalf("expected access token, got %+v", sess.Token)
	}
	if sess.Token.Expiry.IsZero() {
		t.Error("expected token expiry to be set")
	}
}

func TestClientSurfacesProviderMessageVerbatim(t *testing.T) {
	_, c := newFake(t)

	_, err := c.SignIn(context.Background(), "ada@example.com", "wrong")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if perr.Message != "Invalid login credentials" || perr.StatusCode != http.StatusBadRequest {
		t.Errorf("unexpected error: %+v", perr)
	}

	_, err = c.SignUp(context.Background(), "taken@example.com", "pw", "")
	if err == nil || err.Error() != "User already registered" {
		t.Errorf("expected 'User already registered', got %v", err)
	}
	if errors.As(err, &perr) && perr.Code != "user_already_exists" {
		t.Errorf("expected error code, got %q", perr.Code)
	}
}

func TestClientSignUpPendingConfirmation(t *testing.T) {
	fake, c := newFake(t)
	fake.confirm = true

	sess, err := c.SignUp(context.Background(), "new@example.com", "pw", "Grace")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Token != nil {
		t.Error("expected no token while confirmation is pending")
	}
	if sess.User.Email != "new@example.com" {
		t.Errorf("unexpected user: %+v", sess.User)
	}
}

func TestClientUserAndSignOutUseBearer(t *testing.T) {
	fake, c := newFake(t)
	sess, err := c.SignIn(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}

	u, err := c.User(context.Background(), sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if u.DisplayName != "Ada L." {
		t.Errorf("expected refreshed name, got %q", u.DisplayName)
	}

	if err := c.SignOut(context.Background(), sess.Token); err != nil {
		t.Fatal(err)
	}
	if fake.logouts != 1 || !strings.EqualFold(fake.lastBearer, "Bearer tok-1") {
		t.Errorf("expected one bearer logout, got %d %q", fake.logouts, fake.lastBearer)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, testAnonKey).SignIn(context.Background(), "a@b.c", "pw")
	var perr *Error
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected bad gateway error, got %v", err)
	}
}

func TestServiceNotifiesSubscribers(t *testing.T) {
	_, c := newFake(t)
	svc := NewService(c, zerolog.Nop())

	var got []*Session
	unsubscribe := svc.Subscribe("v1", func(s *Session) { got = append(got, s) })
	other := 0
	defer svc.Subscribe("v2", func(*Session) { other++ })()

	if _, err := svc.SignIn(context.Background(), "v1", "ada@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if svc.Current("v1") == nil {
		t.Fatal("expected v1 to be signed in")
	}
	if err := svc.SignOut(context.Background(), "v1"); err != nil {
		t.Fatal(err)
	}
	if svc.Current("v1") != nil {
		t.Error("expected v1 to be signed out")
	}

	if len(got) != 2 || got[0] == nil || got[0].User.Email != "ada@example.com" || got[1] != nil {
		t.Fatalf("unexpected notifications: %+v", got)
	}
	if other != 0 {
		t.Errorf("other visitor should not be notified, got %d", other)
	}

	unsubscribe()
	unsubscribe()
	svc.SignIn(context.Background(), "v1", "ada@example.com", "secret")
	if len(got) != 2 {
		t.Error("unsubscribed callback was still called")
	}
}

func TestServiceFailedSignInKeepsState(t *testing.T) {
	_, c := newFake(t)
	svc := NewService(c, zerolog.Nop())

	calls := 0
	defer svc.Subscribe("v1", func(*Session) { calls++ })()

	if _, err := svc.SignIn(context.Background(), "v1", "ada@example.com", "nope"); err == nil {
		t.Fatal("expected error")
	}
	if svc.Current("v1") != nil || calls != 0 {
		t.Error("failed sign-in must not change the session")
	}
	if _, err := svc.SignIn(context.Background(), "v1", " ", "x"); err == nil {
		t.Error("expected blank email to be rejected")
	}
}

func TestServiceRefreshDropsRejectedToken(t *testing.T) {
	_, c := newFake(t)
	svc := NewService(c, zerolog.Nop())
	if _, err := svc.SignIn(context.Background(), "v1", "ada@example.com", "secret"); err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.Refresh(context.Background(), "v1")
	if err != nil || refreshed.User.DisplayName != "Ada L." {
		t.Fatalf("unexpected refresh: %+v %v", refreshed, err)
	}

	svc.mu.Lock()
	svc.sessions["v1"].Token.AccessToken = "revoked"
	svc.mu.Unlock()
	refreshed, err = svc.Refresh(context.Background(), "v1")
	if err != nil || refreshed != nil || svc.Current("v1") != nil {
		t.Errorf("expected session to be dropped, got %+v %v", refreshed, err)
	}
}

func TestServiceNotConfigured(t *testing.T) {
	svc := NewService(nil, zerolog.Nop())
	if svc.Enabled() {
		t.Error("expected disabled service")
	}
	if _, err := svc.SignIn(context.Background(), "v", "a@b.c", "pw"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func withVisitor(id string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(visitor.WithID(r.Context(), id)))
	})
}

func TestHandlers(t *testing.T) {
	_, c := newFake(t)
	svc := NewService(c, zerolog.Nop())
	r := chi.NewRouter()
	svc.RegisterRoutes(r)
	h := withVisitor("v1", r)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp sessionResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error != "Invalid login credentials" {
		t.Errorf("expected verbatim provider message, got %q", resp.Error)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(`{"email":"ada@example.com","password":"secret"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))
	resp = sessionResponse{}
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.SignedIn || resp.User == nil || resp.User.Email != "ada@example.com" {
		t.Errorf("unexpected session response: %+v", resp)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil))
	if w.Code != http.StatusOK || svc.Current("v1") != nil {
		t.Errorf("expected signed out, got %d", w.Code)
	}
}

func TestMiddlewarePutsSessionOnContext(t *testing.T) {
	_, c := newFake(t)
	svc := NewService(c, zerolog.Nop())
	svc.SignIn(context.Background(), "v1", "ada@example.com", "secret")

	var got *Session
	h := withVisitor("v1", svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got == nil || got.User.ID != "u-1" {
		t.Errorf("expected session on context, got %+v", got)
	}
}
