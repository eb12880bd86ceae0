// Package chat keeps each visitor's direct-chat conversation in memory and
// exposes it over JSON and a websocket.
package chat

import (
	"context"
	"errors"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/weblave/weblave/internal/llm"
	"github.com/weblave/weblave/internal/relay"
	"github.com/weblave/weblave/internal/rules"
)

// PDFContentType is the only content type accepted for attachments.
const PDFContentType = "application/pdf"

// DefaultAccept is the file name filter applied to attachments.
var DefaultAccept = []string{"*.pdf"}

var (
	ErrBusy             = errors.New("a reply is still being generated")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrDocumentAttached = errors.New("a document is already attached; remove it first")
	ErrUnsupportedType  = errors.New("only PDF documents can be attached")
)

// Sender relays a prompt and optional document to the model.
type Sender interface {
	Send(ctx context.Context, text string, doc *relay.Document) (string, error)
}

// Message is one turn of a conversation.
type Message struct {
	ID        string   `json:"id"`
	Role      llm.Role `json:"role"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
}

// DocumentInfo describes an attachment without its bytes.
type DocumentInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	Messages  []Message     `json:"messages"`
	Loading   bool          `json:"loading"`
	LastError string        `json:"error,omitempty"`
	Document  *DocumentInfo `json:"document,omitempty"`
}

// Session is one visitor's conversation.
type Session struct {
	mu        sync.Mutex
	messages  []Message
	loading   bool
	lastError string
	document  *relay.Document
	accept    []string
	now       func() time.Time
}

// NewSession returns an empty session. A nil accept uses DefaultAccept.
func NewSession(accept []string) *Session {
	if len(accept) == 0 {
		accept = DefaultAccept
	}
	return &Session{accept: accept, now: time.Now}
}

// Submit appends text as a user message, relays it with the attached
// document and appends the reply. A relay failure is kept as LastError and
// returned.
func (s *Session) Submit(ctx context.Context, sender Sender, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	s.messages = append(s.messages, s.newMessage(llm.RoleUser, text))
	s.loading = true
	s.lastError = ""
	doc := s.document
	s.mu.Unlock()

	reply, err := sender.Send(ctx, text, doc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastError = errorMessage(err)
		return Message{}, err
	}
	msg := s.newMessage(llm.RoleAssistant, reply)
	s.messages = append(s.messages, msg)
	return msg, nil
}

// Attach sets the session's document. It never replaces an existing one.
func (s *Session) Attach(doc *relay.Document) error {
	if !s.accepts(doc) {
		return ErrUnsupportedType
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.document != nil {
		return ErrDocumentAttached
	}
	s.document = doc
	return nil
}

// RemoveDocument drops the attachment, if any.
func (s *Session) RemoveDocument() {
	s.mu.Lock()
	s.document = nil
	s.mu.Unlock()
}

// Clear forgets messages, error and attachment. An in-flight reply still
// lands afterwards.
func (s *Session) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.lastError = ""
	s.document = nil
	s.mu.Unlock()
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Messages:  append([]Message(nil), s.messages...),
		Loading:   s.loading,
		LastError: s.lastError,
	}
	if s.document != nil {
		snap.Document = &DocumentInfo{Name: s.document.Name, Size: len(s.document.Data)}
	}
	return snap
}

// Commands converts the conversation into chatbot rules.
func (s *Session) Commands() rules.Table {
	s.mu.Lock()
	turns := make([]llm.Message, len(s.messages))
	for i, m := range s.messages {
		turns[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	s.mu.Unlock()
	return rules.FromTranscript(turns)
}

func (s *Session) newMessage(role llm.Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}
}

func (s *Session) accepts(doc *relay.Document) bool {
	if doc == nil {
		return false
	}
	ct := strings.TrimSpace(strings.SplitN(doc.ContentType, ";", 2)[0])
	if !strings.EqualFold(ct, PDFContentType) {
		return false
	}
	name := strings.ToLower(path.Base(doc.Name))
	for _, pattern := range s.accept {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), name); ok {
			return true
		}
	}
	return false
}

func errorMessage(err error) string {
	var rerr *relay.Error
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	return "Failed to get response. Please try again."
}
