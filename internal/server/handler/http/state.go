package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/codemonkey/internal/appstate"
	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StateContainer defines the feature-state operations required by the StateHandler.
type StateContainer interface {
	// List returns the entries in insertion order.
	List() []models.Entry
	// Add appends an entry and persists the container snapshot.
	Add(ctx context.Context, value string) (models.Entry, error)
}

// StateHandler handles HTTP requests for the dependent state containers.
type StateHandler struct {
	// Containers maps a container name (snippet, chat, ...) to its state.
	Containers map[string]StateContainer
	// Logger records storage failures. Nil disables logging.
	Logger *zap.Logger
}

// NewStateHandler exposes every container of reg under its name.
func NewStateHandler(reg *appstate.Registry, logger *zap.Logger) *StateHandler {
	h := &StateHandler{Containers: make(map[string]StateContainer), Logger: logger}
	for _, c := range reg.All() {
		h.Containers[c.Name()] = c
	}
	return h
}

// List handles GET /api/state/{name}.
func (h *StateHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := h.Containers[chi.URLParam(r, "name")]
	if !ok {
		http.Error(w, "unknown container", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c.List())
}

// Add handles POST /api/state/{name} with a body of {"value": "..."}.
func (h *StateHandler) Add(w http.ResponseWriter, r *http.Request) {
	c, ok := h.Containers[chi.URLParam(r, "name")]
	if !ok {
		http.Error(w, "unknown container", http.StatusNotFound)
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	e, err := c.Add(r.Context(), req.Value)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("failed to add entry",
				zap.String("container", chi.URLParam(r, "name")), zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(e)
}
