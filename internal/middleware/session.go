// Package middleware provides HTTP middlewares for session scoping, logging and metrics.
package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/atinyakov/codemonkey/internal/session"
)

type ctxKey string

const redirectKey ctxKey = "redirect"

// Redirect records the navigation requested by a provider during a request.
// It implements session.Navigator.
type Redirect struct {
	mu     sync.Mutex
	target string
}

// Navigate implements session.Navigator.
func (r *Redirect) Navigate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = path
}

// Target returns the requested path, or "" if none.
func (r *Redirect) Target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// RedirectTarget returns the navigation requested during this request, if any.
func RedirectTarget(ctx context.Context) string {
	if r, ok := ctx.Value(redirectKey).(*Redirect); ok {
		return r.Target()
	}
	return ""
}

// SharedSession scopes every request to the same process-wide provider. It is
// used when the session mirror lives in the key-value store.
func SharedSession(p *session.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), p)))
		})
	}
}

// CookieSessionConfig configures CookieSession.
type CookieSessionConfig struct {
	// Verifier checks credentials on login.
	Verifier session.Verifier
	// Secure marks the session cookie Secure.
	Secure bool
	// SignInPath is where the browser goes after logout. Empty disables the redirect.
	SignInPath string
	// Options are applied to every per-request provider.
	Options []session.Option
}

// CookieSession creates a provider for each request, rehydrated from the
// request's session cookie and writing its changes to the response.
func CookieSession(cfg CookieSessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			opts := append([]session.Option{}, cfg.Options...)

			if cfg.SignInPath != "" {
				redirect := &Redirect{}
				opts = append(opts, session.WithSignInRedirect(redirect, cfg.SignInPath))
				ctx = context.WithValue(ctx, redirectKey, redirect)
			}

			p := session.NewProvider(ctx, cfg.Verifier, session.NewCookieMirror(w, r, cfg.Secure), opts...)
			next.ServeHTTP(w, r.WithContext(session.NewContext(ctx, p)))
		})
	}
}

// RequireUser rejects requests whose session has no signed-in user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()).User(); !ok {
			http.Error(w, "not signed in", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
