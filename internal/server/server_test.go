package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestServer(cfg Config) *Server {
	return New(cfg, zerolog.Nop())
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(Config{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(Config{AllowedOrigins: []string{"*"}})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestOpenPathsSkipGlobalCORS(t *testing.T) {
	srv := newTestServer(Config{
		AllowedOrigins: []string{"https://weblave.example"},
		OpenPaths:      []string{"/api/widget/"},
	})
	reached := false
	srv.Router().Options("/api/widget/reply", func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})

	req := httptest.NewRequest("OPTIONS", "/api/widget/reply", nil)
	req.Header.Set("Origin", "https://customer.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if !reached {
		t.Error("preflight for an open path was answered by the global policy")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(Config{})

	// Generate one counted request first.
	srv.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "weblave_http_requests_total") {
		t.Error("request counter missing from /metrics")
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(Config{Secure: true})
	srv.Router().Get("/api/thing", func(w http.ResponseWriter, r *http.Request) {})
	srv.Router().Get("/page", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/thing", nil))
	if got := w.Header().Get("Content-Security-Policy"); got != "default-src 'none'" {
		t.Errorf("API CSP = %q", got)
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("HSTS missing on secure server")
	}

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/page", nil))
	if got := w.Header().Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'self'") {
		t.Errorf("page CSP = %q", got)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("nosniff missing")
	}
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
		}
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("x", 11))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("small")))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestTimeoutSkipsWebSocketUpgrades(t *testing.T) {
	var deadline bool
	h := Timeout(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadline = r.Context().Deadline()
	}))

	req := httptest.NewRequest("GET", "/ws/chat", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if deadline {
		t.Error("websocket upgrade got a deadline")
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/chat", nil))
	if !deadline {
		t.Error("plain request has no deadline")
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/chatbot-generator/commands/3/delete": "/chatbot-generator/commands/:index",
		"/static/weblave.css":                  "/static/*",
		"/api/chat":                            "/api/chat",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
