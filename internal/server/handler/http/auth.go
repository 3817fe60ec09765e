// Package http provides the HTTP handlers of the dashboard shell: the root
// layout, the session API and the feature state API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/codemonkey/internal/middleware"
	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/atinyakov/codemonkey/internal/session"
)

// AuthHandler handles HTTP requests for login, logout and session reads.
// The session provider is taken from the request context.
type AuthHandler struct{}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	// Username is the login handle.
	Username string `json:"username"`
	// Password is the shared secret.
	Password string `json:"password"`
}

// SessionResponse is the capability view exposed to the page tree.
type SessionResponse struct {
	User      *models.Identity `json:"user"`
	IsLoading bool             `json:"isLoading"`
}

// Login verifies the credentials after the simulated delay and, on success,
// responds with the identity. Unknown users and wrong passwords both yield 401.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	p := session.FromContext(r.Context())
	id, err := p.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	case errors.Is(err, session.ErrSuperseded):
		http.Error(w, "login superseded", http.StatusConflict)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "request canceled", http.StatusServiceUnavailable)
		return
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(id)
}

// Logout ends the session. When the provider asked to navigate, the client is
// redirected there; otherwise 204 is returned.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session.FromContext(r.Context()).Logout(r.Context())

	if target := middleware.RedirectTarget(r.Context()); target != "" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the current user and loading flag.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	snap := session.FromContext(r.Context()).Snapshot()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SessionResponse{User: snap.User, IsLoading: snap.Loading})
}
