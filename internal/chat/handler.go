package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/weblave/weblave/internal/identity"
	"github.com/weblave/weblave/internal/relay"
	"github.com/weblave/weblave/internal/visitor"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SessionWatcher reports identity changes for a visitor.
type SessionWatcher interface {
	Subscribe(visitorID string, fn func(*identity.Session)) func()
}

// Handler serves the direct-chat API.
type Handler struct {
	store   *Store
	sender  Sender
	watcher SessionWatcher
	logger  zerolog.Logger
}

// NewHandler creates a handler. watcher may be nil.
func NewHandler(store *Store, sender Sender, watcher SessionWatcher, logger zerolog.Logger) *Handler {
	return &Handler{store: store, sender: sender, watcher: watcher, logger: logger}
}

// RegisterRoutes mounts the chat routes onto the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/chat", h.handleSnapshot)
	r.Delete("/api/chat", h.handleClear)
	r.Post("/api/chat/messages", h.handleMessage)
	r.Post("/api/chat/document", h.handleAttach)
	r.Delete("/api/chat/document", h.handleRemoveDocument)
	r.Get("/api/chat/commands", h.handleCommands)
	r.Get("/ws/chat", h.handleWebSocket)
}

type messageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	Message *Message `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (h *Handler) session(r *http.Request) *Session {
	return h.store.Get(visitor.ID(r.Context()))
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session(r).Snapshot())
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.Clear()
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.session(r).Submit(r.Context(), h.sender, req.Content)
	if err != nil {
		writeJSON(w, StatusFor(err), messageResponse{Error: ErrorText(err)})
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: &msg})
}

func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	doc, err := ReadDocument(r, "file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Error: err.Error()})
		return
	}
	s := h.session(r)
	if err := s.Attach(doc); err != nil {
		writeJSON(w, StatusFor(err), messageResponse{Error: ErrorText(err)})
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	s := h.session(r)
	s.RemoveDocument()
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) handleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session(r).Commands())
}

// ReadDocument reads the multipart file field into a Document.
func ReadDocument(r *http.Request, field string) (*relay.Document, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, errors.New("a file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read the uploaded file")
	}
	return &relay.Document{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// StatusFor maps session and relay errors onto HTTP statuses.
func StatusFor(err error) int {
	var rerr *relay.Error
	switch {
	case errors.Is(err, ErrBusy), errors.Is(err, ErrDocumentAttached):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &rerr):
		switch rerr.Kind {
		case relay.KindFileTooLarge, relay.KindMessageTooLong, relay.KindPayloadTooLarge:
			return http.StatusRequestEntityTooLarge
		case relay.KindRateLimited:
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrorText is what the visitor sees for err.
func ErrorText(err error) string {
	var rerr *relay.Error
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	switch {
	case errors.Is(err, ErrBusy), errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrDocumentAttached), errors.Is(err, ErrUnsupportedType):
		return err.Error()
	}
	return "Failed to get response. Please try again."
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type    string `json:"type"` // "message", "clear" or "remove_document"
	Content string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type     string         `json:"type"` // "response", "error", "state" or "auth"
	Content  string         `json:"content,omitempty"`
	Message  *Message       `json:"message,omitempty"`
	Snapshot *Snapshot      `json:"snapshot,omitempty"`
	User     *identity.User `json:"user,omitempty"`
}

// wsConn serialises writes; identity callbacks arrive on other goroutines.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(resp wsResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(resp)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("chat: websocket upgrade")
		return
	}
	defer conn.Close()

	ws := &wsConn{conn: conn}
	visitorID := visitor.ID(r.Context())
	sess := h.store.Get(visitorID)

	if h.watcher != nil {
		unsubscribe := h.watcher.Subscribe(visitorID, func(s *identity.Session) {
			resp := wsResponse{Type: "auth"}
			if s != nil {
				u := s.User
				resp.User = &u
			}
			if err := ws.send(resp); err != nil {
				h.logger.Debug().Err(err).Msg("chat: websocket auth push")
			}
		})
		defer unsubscribe()
	}

	snap := sess.Snapshot()
	h.write(ws, wsResponse{Type: "state", Snapshot: &snap})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("chat: websocket read")
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			h.write(ws, wsResponse{Type: "error", Content: "invalid message format"})
			continue
		}

		switch req.Type {
		case "message":
			msg, err := sess.Submit(r.Context(), h.sender, req.Content)
			if err != nil {
				h.write(ws, wsResponse{Type: "error", Content: ErrorText(err)})
				continue
			}
			h.write(ws, wsResponse{Type: "response", Message: &msg})
		case "clear":
			sess.Clear()
			snap := sess.Snapshot()
			h.write(ws, wsResponse{Type: "state", Snapshot: &snap})
		case "remove_document":
			sess.RemoveDocument()
			snap := sess.Snapshot()
			h.write(ws, wsResponse{Type: "state", Snapshot: &snap})
		default:
			h.write(ws, wsResponse{Type: "error", Content: "unknown message type: " + req.Type})
		}
	}
}

func (h *Handler) write(ws *wsConn, resp wsResponse) {
	if err := ws.send(resp); err != nil {
		h.logger.Warn().Err(err).Msg("chat: websocket write")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
