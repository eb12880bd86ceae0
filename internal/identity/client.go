// Package identity adapts the hosted identity provider (a GoTrue REST API)
// for sign-up, sign-in, sign-out and session-change notification.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// User is the read-only projection of the provider's user record.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session is a signed-in user plus the provider's bearer token. Token is nil
// when sign-up still awaits email confirmation.
type Session struct {
	User  User          `json:"user"`
	Token *oauth2.Token `json:"-"`
}

// Error is a failure reported by the provider. Message is shown to the
// visitor verbatim.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string { return e.Message }

// Client talks to <project>/auth/v1.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// NewClient creates a client for the given project URL and anonymous key.
func NewClient(projectURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(projectURL, "/") + "/auth/v1",
		anonKey: anonKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

type credentials struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type userRecord struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	RefreshToken string      `json:"refresh_token"`
	User         *userRecord `json:"user"`

	// Sign-up with confirmation pending answers with the bare user.
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorName        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// SignUp registers a new account with a display name.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	body := credentials{Email: email, Password: password}
	if displayName != "" {
		body.Data = map[string]any{"name": displayName}
	}
	var resp tokenResponse
	if err := c.do(ctx, c.http, http.MethodPost, "/signup", body, &resp); err != nil {
		return nil, err
	}
	return resp.session(), nil
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	body := credentials{Email: email, Password: password}
	if err := c.do(ctx, c.http, http.MethodPost, "/token?grant_type=password", body, &resp); err != nil {
		return nil, err
	}
	s := resp.session()
	if s.Token == nil {
		return nil, &Error{StatusCode: http.StatusBadGateway, Message: "Sign-in response did not include a session."}
	}
	return s, nil
}

// SignOut revokes the token's session at the provider.
func (c *Client) SignOut(ctx context.Context, token *oauth2.Token) error {
	return c.do(ctx, c.bearer(ctx, token), http.MethodPost, "/logout", nil, nil)
}

// User fetches the user owning token.
func (c *Client) User(ctx context.Context, token *oauth2.Token) (*User, error) {
	var rec userRecord
	if err := c.do(ctx, c.bearer(ctx, token), http.MethodGet, "/user", nil, &rec); err != nil {
		return nil, err
	}
	u := rec.user()
	return &u, nil
}

func (c *Client) bearer(ctx context.Context, token *oauth2.Token) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return &Error{StatusCode: http.StatusBadGateway, Message: "Unable to reach the authentication service. Please try again."}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) *Error {
	e := &Error{StatusCode: status}
	var er errorResponse
	if json.Unmarshal(data, &er) == nil {
		e.Code = er.ErrorCode
		if e.Code == "" {
			e.Code = er.ErrorName
		}
		for _, m := range []string{er.Msg, er.Message, er.ErrorDescription, er.ErrorName} {
			if m != "" {
				e.Message = m
				break
			}
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

func (r *tokenResponse) session() *Session {
	s := &Session{}
	if r.User != nil {
		s.User = r.User.user()
	} else {
		s.User = User{ID: r.ID, Email: r.Email}
	}
	if r.AccessToken != "" {
		tok := &oauth2.Token{
			AccessToken:  r.AccessToken,
			TokenType:    r.TokenType,
			RefreshToken: r.RefreshToken,
		}
		if r.ExpiresIn > 0 {
			tok.Expiry = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
		}
		s.Token = tok
	}
	return s
}

func (r userRecord) user() User {
	u := User{ID: r.ID, Email: r.Email}
	if name, ok := r.UserMetadata["name"].(string); ok {
		u.DisplayName = name
	}
	return u
}
