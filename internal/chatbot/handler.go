package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/weblave/weblave/internal/keyseal"
	"github.com/weblave/weblave/internal/metrics"
	"github.com/weblave/weblave/internal/rules"
	"github.com/weblave/weblave/internal/widget"
)

// PreviewErrorReply replaces a failed preview answer.
const PreviewErrorReply = "I'm sorry, I encountered an error. Please try again."

// SenderFunc builds a generative sender for a bot's API key.
type SenderFunc func(apiKey string) rules.Sender

// Handler serves the generator API and the widget proxy.
type Handler struct {
	gen     *Generator
	relay   rules.Sender
	senders SenderFunc
	logger  zerolog.Logger
}

// NewHandler creates a handler. relay answers previews when senders is nil.
func NewHandler(gen *Generator, relay rules.Sender, senders SenderFunc, logger zerolog.Logger) *Handler {
	return &Handler{gen: gen, relay: relay, senders: senders, logger: logger}
}

// RegisterRoutes mounts the chatbot routes onto the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chatbots/snippet", h.handleSnippet)
	r.Post("/api/chatbots/preview", h.handlePreview)

	// Widgets run on third-party pages.
	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Options(ProxyPath, func(w http.ResponseWriter, r *http.Request) {})
		r.Post(ProxyPath, h.handleWidgetReply)
	})
}

type snippetResponse struct {
	Snippet string `json:"snippet,omitempty"`
	Error   string `json:"error,omitempty"`
}

type previewRequest struct {
	Bot     Config `json:"bot"`
	Message string `json:"message"`
}

type previewResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source"`
	Error  string `json:"error,omitempty"`
}

type widgetRequest struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type widgetResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) handleSnippet(w http.ResponseWriter, r *http.Request) {
	var cfg Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, snippetResponse{Error: "invalid request body"})
		return
	}
	snippet, err := h.gen.Generate(cfg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, rules.ErrBlankRule) || errors.Is(err, ErrNoProxy) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, snippetResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snippetResponse{Snippet: snippet})
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, previewResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, previewResponse{Error: "message is required"})
		return
	}

	reply, err := h.Preview(r.Context(), req.Bot, req.Message)
	if err != nil {
		writeJSON(w, http.StatusOK, previewResponse{Reply: PreviewErrorReply, Source: "error"})
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Reply: reply.Text, Source: string(reply.Source)})
}

// Preview answers message the way the exported widget would.
func (h *Handler) Preview(ctx context.Context, bot Config, message string) (rules.Reply, error) {
	res := &rules.Resolver{
		Table:       bot.Commands,
		AIEnabled:   bot.AIEnabled(),
		TypingDelay: h.gen.TypingDelay,
	}
	if res.AIEnabled {
		res.Sender = h.relay
		if h.senders != nil {
			res.Sender = h.senders(strings.TrimSpace(bot.APIKey))
		}
	}
	reply, err := res.Resolve(ctx, message)
	if err != nil {
		h.logger.Warn().Err(err).Str("bot", bot.Name).Msg("chatbot: preview failed")
	}
	return reply, err
}

func (h *Handler) handleWidgetReply(w http.ResponseWriter, r *http.Request) {
	var req widgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		h.proxyFail(w, http.StatusBadRequest, "bad_request")
		return
	}
	if h.gen.Sealer == nil || h.senders == nil {
		h.proxyFail(w, http.StatusServiceUnavailable, "disabled")
		return
	}

	apiKey, err := h.gen.Sealer.Open(req.Token)
	if err != nil {
		h.logger.Warn().Str("remote", r.RemoteAddr).Msg("chatbot: rejected widget token")
		h.proxyFail(w, http.StatusUnauthorized, "invalid_token")
		return
	}

	answer, err := h.senders(apiKey).Forward(r.Context(), req.Message)
	if err != nil {
		h.logger.Warn().Err(err).Msg("chatbot: widget relay failed")
		h.proxyFail(w, http.StatusBadGateway, "relay_error")
		return
	}
	metrics.ProxyRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, widgetResponse{Reply: answer})
}

func (h *Handler) proxyFail(w http.ResponseWriter, status int, result string) {
	metrics.ProxyRequests.WithLabelValues(result).Inc()
	writeJSON(w, status, widgetResponse{Reply: widget.ErrorReply})
}

// NewSealer returns a sealer for secret, generating an ephemeral one when
// secret is empty. The second result reports whether it was generated.
func NewSealer(secret string) (*keyseal.Sealer, bool, error) {
	generated := false
	if secret == "" {
		s, err := keyseal.NewRandomSecret()
		if err != nil {
			return nil, false, err
		}
		secret, generated = s, true
	}
	sealer, err := keyseal.New(secret)
	if err != nil {
		return nil, false, err
	}
	return sealer, generated, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
