package web

import (
	"net/url"
)

// Auth modal modes.
const (
	AuthLogin  = "login"
	AuthSignup = "signup"
)

// Modals is the set of open dialogs, carried in the query string so each
// flag is independent of the others.
type Modals struct {
	Auth    string
	Create  bool
	Preview bool
	Code    bool
}

// ParseModals reads the modal flags from q.
func ParseModals(q url.Values) Modals {
	m := Modals{
		Create:  q.Get("create") == "1",
		Preview: q.Get("preview") == "1",
		Code:    q.Get("code") == "1",
	}
	switch q.Get("auth") {
	case AuthLogin, AuthSignup:
		m.Auth = q.Get("auth")
	}
	return m
}

// Query encodes the flags, omitting closed dialogs.
func (m Modals) Query() string {
	q := url.Values{}
	if m.Auth != "" {
		q.Set("auth", m.Auth)
	}
	if m.Create {
		q.Set("create", "1")
	}
	if m.Preview {
		q.Set("preview", "1")
	}
	if m.Code {
		q.Set("code", "1")
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Open returns the query with the named dialog opened. For "login" and
// "signup" the auth dialog switches mode.
func (m Modals) Open(name string) string {
	m.set(name, true)
	return m.Query()
}

// Close returns the query with the named dialog closed.
func (m Modals) Close(name string) string {
	m.set(name, false)
	return m.Query()
}

func (m *Modals) set(name string, open bool) {
	switch name {
	case AuthLogin, AuthSignup:
		if open {
			m.Auth = name
		} else {
			m.Auth = ""
		}
	case "auth":
		if !open {
			m.Auth = ""
		}
	case "create":
		m.Create = open
	case "preview":
		m.Preview = open
	case "code":
		m.Code = open
	}
}
