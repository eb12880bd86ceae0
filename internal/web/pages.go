package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/weblave/weblave/internal/chat"
	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/identity"
	"github.com/weblave/weblave/internal/rules"
	"github.com/weblave/weblave/internal/visitor"
)

const chatPath = "/direct-chat"
const generatorPath = "/chatbot-generator"

func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, visitor.ID(r.Context()), "Home")
	h.render(w, "landing", data)
}

// Direct chat.

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	data := h.page(r, id, "Direct Chat")
	data.Chat = h.opts.Chats.Get(id).Snapshot()
	data.Accept = acceptAttr(h.opts.Accept)
	h.render(w, "chat", data)
}

func (h *Handler) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	text := r.FormValue("message")
	_, err := h.opts.Chats.Get(id).Submit(r.Context(), h.opts.Sender, text)
	// Send failures are kept on the session as LastError.
	if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrBusy) {
		h.flashes.set(id, flash{FormError: chat.ErrorText(err)})
	}
	redirect(w, r, chatPath, ParseModals(r.URL.Query()))
}

func (h *Handler) handleChatAttach(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	doc, err := chat.ReadDocument(r, "file")
	if err == nil {
		err = h.opts.Chats.Get(id).Attach(doc)
	}
	if err != nil {
		msg := err.Error()
		if errors.Is(err, chat.ErrUnsupportedType) || errors.Is(err, chat.ErrDocumentAttached) {
			msg = chat.ErrorText(err)
		}
		h.flashes.set(id, flash{FormError: msg})
	}
	redirect(w, r, chatPath, ParseModals(r.URL.Query()))
}

func (h *Handler) handleChatRemoveDocument(w http.ResponseWriter, r *http.Request) {
	h.opts.Chats.Get(visitor.ID(r.Context())).RemoveDocument()
	redirect(w, r, chatPath, ParseModals(r.URL.Query()))
}

func (h *Handler) handleChatClear(w http.ResponseWriter, r *http.Request) {
	h.opts.Chats.Get(visitor.ID(r.Context())).Clear()
	redirect(w, r, chatPath, ParseModals(r.URL.Query()))
}

// handleChatToBot turns the conversation into a draft bot and opens the
// creator.
func (h *Handler) handleChatToBot(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	commands := h.opts.Chats.Get(id).Commands()
	h.opts.Drafts.Update(id, func(d *chatbot.Draft) error {
		d.Commands = commands
		return nil
	})
	h.previews.reset(id)
	redirect(w, r, generatorPath, Modals{Create: true})
}

// Chatbot generator.

func (h *Handler) handleGenerator(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	data := h.page(r, id, "Chatbot Generator")
	data.Draft = h.opts.Drafts.Get(id)

	if data.Modals.Preview {
		data.Preview = append([]previewLine{{Content: data.Draft.WelcomeMessage}}, h.previews.get(id)...)
	} else {
		h.previews.reset(id)
	}

	if data.Modals.Code {
		snippet, err := h.opts.Generator.Generate(data.Draft.Bot())
		if err != nil {
			data.SnippetError = err.Error()
		}
		data.Snippet = snippet
	}
	h.render(w, "generator", data)
}

func (h *Handler) handleDraftDetails(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	h.opts.Drafts.Update(id, func(d *chatbot.Draft) error {
		d.Name = strings.TrimSpace(r.FormValue("name"))
		d.WelcomeMessage = strings.TrimSpace(r.FormValue("welcome_message"))
		d.SetAI(r.FormValue("use_ai") == "1")
		if key := strings.TrimSpace(r.FormValue("api_key")); d.UseAI && key != "" {
			d.APIKey = key
		}
		return nil
	})
	redirect(w, r, generatorPath, ParseModals(r.URL.Query()))
}

func (h *Handler) handleDraftAddCommand(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	_, err := h.opts.Drafts.Update(id, func(d *chatbot.Draft) error {
		var err error
		d.Commands, err = d.Commands.Add(strings.TrimSpace(r.FormValue("trigger")), strings.TrimSpace(r.FormValue("response")))
		return err
	})
	if errors.Is(err, rules.ErrBlankRule) {
		h.flashes.set(id, flash{FormError: "Both a trigger and a response are required."})
	}
	redirect(w, r, generatorPath, ParseModals(r.URL.Query()))
}

func (h *Handler) handleDraftRemoveCommand(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		h.opts.Drafts.Update(id, func(d *chatbot.Draft) error {
			d.Commands = d.Commands.Remove(index)
			return nil
		})
	}
	redirect(w, r, generatorPath, ParseModals(r.URL.Query()))
}

func (h *Handler) handlePreviewMessage(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	modals := ParseModals(r.URL.Query())
	modals.Preview = true

	message := r.FormValue("message")
	if strings.TrimSpace(message) == "" {
		redirect(w, r, generatorPath, modals)
		return
	}

	bot := h.opts.Drafts.Get(id).Bot()
	text := chatbot.PreviewErrorReply
	if reply, err := h.opts.Bots.Preview(r.Context(), bot, message); err == nil {
		text = reply.Text
	}
	h.previews.add(id, previewLine{Content: message, User: true}, previewLine{Content: text})
	redirect(w, r, generatorPath, modals)
}

// Authentication.

func (h *Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	id := visitor.ID(r.Context())
	mode := chi.URLParam(r, "mode")
	back := safeReturn(r.FormValue("return"))
	if mode != AuthLogin && mode != AuthSignup {
		http.NotFound(w, r)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	var (
		sess *identity.Session
		err  error
	)
	if mode == AuthSignup {
		sess, err = h.opts.Auth.SignUp(r.Context(), id, email, password, strings.TrimSpace(r.FormValue("name")))
	} else {
		sess, err = h.opts.Auth.SignIn(r.Context(), id, email, password)
	}
	if err != nil {
		h.flashes.set(id, flash{AuthError: identity.ErrorMessage(err)})
		http.Redirect(w, r, withAuth(back, mode), http.StatusSeeOther)
		return
	}
	if sess.Token == nil {
		h.flashes.set(id, flash{Notice: "Check your email to confirm your account, then log in."})
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.opts.Auth.SignOut(r.Context(), visitor.ID(r.Context()))
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

// withAuth reopens the auth dialog on back.
func withAuth(back, mode string) string {
	path, query, _ := strings.Cut(back, "?")
	q, _ := url.ParseQuery(query)
	m := ParseModals(q)
	return path + m.Open(mode)
}

func acceptAttr(patterns []string) string {
	exts := make([]string, 0, len(patterns)+1)
	exts = append(exts, chat.PDFContentType)
	for _, p := range patterns {
		if i := strings.LastIndex(p, "."); i >= 0 && !strings.ContainsAny(p[i:], "*?[{") {
			exts = append(exts, p[i:])
		}
	}
	return strings.Join(exts, ",")
}
