// Package web serves the server-rendered pages: landing, direct chat and the
// chatbot generator.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/weblave/weblave/internal/chat"
	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/identity"
	"github.com/weblave/weblave/internal/llm"
)

// Options wires the pages to the rest of the application.
type Options struct {
	Chats     *chat.Store
	Sender    chat.Sender
	Drafts    *chatbot.Drafts
	Bots      *chatbot.Handler
	Generator *chatbot.Generator
	Auth      *identity.Service
	Accept    []string
	Logger    zerolog.Logger
}

// Handler renders the UI shell.
type Handler struct {
	opts     Options
	pages    map[string]*template.Template
	flashes  *flashes
	previews *previews
}

// New parses the page templates.
func New(opts Options) (*Handler, error) {
	if len(opts.Accept) == 0 {
		opts.Accept = chat.DefaultAccept
	}
	funcs := template.FuncMap{
		"markdown": RenderMarkdown,
		"isUser":   func(r llm.Role) bool { return r == llm.RoleUser },
		"initial":  initial,
	}
	layout, err := template.New("layout").Funcs(funcs).Parse(layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing layout template: %w", err)
	}

	pages := make(map[string]*template.Template)
	for name, src := range map[string]string{
		"landing":   landingTemplate,
		"chat":      chatTemplate,
		"generator": generatorTemplate,
	} {
		t, err := template.Must(layout.Clone()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}

	return &Handler{
		opts:     opts,
		pages:    pages,
		flashes:  &flashes{m: make(map[string]flash)},
		previews: &previews{m: make(map[string][]previewLine)},
	}, nil
}

// RegisterRoutes mounts the pages onto the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleLanding)

	r.Get("/direct-chat", h.handleChat)
	r.Post("/direct-chat/messages", h.handleChatMessage)
	r.Post("/direct-chat/document", h.handleChatAttach)
	r.Post("/direct-chat/document/remove", h.handleChatRemoveDocument)
	r.Post("/direct-chat/clear", h.handleChatClear)
	r.Post("/direct-chat/chatbot", h.handleChatToBot)

	r.Get("/chatbot-generator", h.handleGenerator)
	r.Post("/chatbot-generator/details", h.handleDraftDetails)
	r.Post("/chatbot-generator/commands", h.handleDraftAddCommand)
	r.Post("/chatbot-generator/commands/{index}/delete", h.handleDraftRemoveCommand)
	r.Post("/chatbot-generator/preview", h.handlePreviewMessage)

	r.Post("/auth/{mode}", h.handleAuth)
	r.Post("/auth/signout", h.handleSignOut)

	r.Get("/static/weblave.css", static("text/css; charset=utf-8", cssContent))
	r.Get("/static/weblave.js", static("application/javascript; charset=utf-8", jsContent))
}

// pageData is what every template sees.
type pageData struct {
	Title     string
	Path      string
	Return    string
	Modals    Modals
	User      *identity.User
	Notice    string
	AuthError string
	FormError string

	Chat   chat.Snapshot
	Accept string

	Draft        chatbot.Draft
	Preview      []previewLine
	Snippet      string
	SnippetError string
}

func (h *Handler) page(r *http.Request, visitorID, title string) pageData {
	modals := ParseModals(r.URL.Query())
	data := pageData{
		Title:  title,
		Path:   r.URL.Path,
		Return: r.URL.Path + modals.Close("auth"),
		Modals: modals,
	}
	if sess := identity.FromContext(r.Context()); sess != nil {
		u := sess.User
		if u.DisplayName == "" {
			u.DisplayName = u.Email
		}
		data.User = &u
	}
	f := h.flashes.take(visitorID)
	data.Notice, data.AuthError, data.FormError = f.Notice, f.AuthError, f.FormError
	return data
}

func (h *Handler) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.opts.Logger.Error().Err(err).Str("page", name).Msg("web: render failed")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// redirect sends the browser back to path with the given dialogs open.
func redirect(w http.ResponseWriter, r *http.Request, path string, m Modals) {
	http.Redirect(w, r, path+m.Query(), http.StatusSeeOther)
}

func static(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write([]byte(body))
	}
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "A"
	}
	return strings.ToUpper(string(r))
}

// safeReturn keeps post-login redirects on this site.
func safeReturn(s string) string {
	if !strings.HasPrefix(s, "/") || strings.HasPrefix(s, "//") || strings.Contains(s, "\\") {
		return "/"
	}
	return s
}

// flash is a one-shot message shown on the next page view.
type flash struct {
	Notice    string
	AuthError string
	FormError string
}

type flashes struct {
	mu sync.Mutex
	m  map[string]flash
}

func (f *flashes) set(visitorID string, v flash) {
	f.mu.Lock()
	f.m[visitorID] = v
	f.mu.Unlock()
}

func (f *flashes) take(visitorID string) flash {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.m[visitorID]
	delete(f.m, visitorID)
	return v
}

// previewLine is one bubble in the generator's preview dialog.
type previewLine struct {
	Content string
	User    bool
}

type previews struct {
	mu sync.Mutex
	m  map[string][]previewLine
}

func (p *previews) get(visitorID string) []previewLine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]previewLine(nil), p.m[visitorID]...)
}

func (p *previews) add(visitorID string, lines ...previewLine) {
	p.mu.Lock()
	p.m[visitorID] = append(p.m[visitorID], lines...)
	p.mu.Unlock()
}

func (p *previews) reset(visitorID string) {
	p.mu.Lock()
	delete(p.m, visitorID)
	p.mu.Unlock()
}
