package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// MaxUploadBytes caps request bodies: a 20 MiB document plus multipart
// overhead.
const MaxUploadBytes = 21 << 20

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	AllowedOrigins []string
	// OpenPaths are path prefixes that carry their own CORS policy.
	OpenPaths []string
	// Secure enables HSTS; set when served over HTTPS.
	Secure bool
}

// Server is the weblave HTTP server.
type Server struct {
	cfg        Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server. mws run after the standard middleware and before
// any route, e.g. visitor and identity lookups.
func New(cfg Config, logger zerolog.Logger, mws ...func(http.Handler) http.Handler) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	s := &Server{cfg: cfg, logger: logger}
	s.router = s.buildRouter(mws)
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter(mws []func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Metrics first so every request is counted.
	r.Use(Metrics)
	r.Use(SecurityHeaders(s.cfg.Secure))
	r.Use(MaxBodySize(MaxUploadBytes))

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(Timeout(s.cfg.RequestTimeout))

	r.Use(exceptPaths(s.cfg.OpenPaths, cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})))

	for _, mw := range mws {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Feature packages add their routes via RegisterRoutes.
	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Addr is the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Start begins listening on the configured address. It returns
// http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info().Str("addr", s.Addr()).Msg("weblave server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// exceptPaths applies mw to every request outside prefixes.
func exceptPaths(prefixes []string, mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range prefixes {
				if strings.HasPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
