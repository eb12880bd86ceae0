// Package visitor identifies browsers across requests with a long-lived
// cookie. The id keys every piece of in-memory per-visitor state.
package visitor

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName is the name of the visitor cookie.
	CookieName = "weblave_visitor"
	// CookieMaxAge is how long a browser keeps its id.
	CookieMaxAge = 30 * 24 * time.Hour
)

type ctxKey struct{}

// SetCookie writes an HTTP-only visitor cookie.
func SetCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// ClearCookie removes the visitor cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetCookie reads the visitor id from the request.
func GetCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// Middleware makes sure every request carries a visitor id, issuing a new
// cookie when the browser has none, and stores the id on the context.
func Middleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := GetCookie(r)
			if err != nil {
				id = uuid.NewString()
				SetCookie(w, id, secure)
			}
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}

// WithID returns a copy of ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the visitor id stored by Middleware, or "".
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
