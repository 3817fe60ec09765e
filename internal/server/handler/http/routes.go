package http

import (
	"net/http"

	"github.com/atinyakov/codemonkey/internal/metrics"
	"github.com/atinyakov/codemonkey/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the dashboard shell's HTTP handler.
//
// Routes:
//
//	GET  /                 → layout.Home
//	GET  /signin           → layout.SignIn
//	GET  /api/session      → authHandler.Session
//	POST /api/login        → authHandler.Login
//	POST /api/logout       → authHandler.Logout
//	GET  /api/state/{name} → stateHandler.List (signed-in only)
//	POST /api/state/{name} → stateHandler.Add  (signed-in only)
//	GET  /metrics          → Prometheus exposition
//
// sessionMW places a session provider in every request context; it is either
// middleware.SharedSession or middleware.CookieSession.
func NewRouter(
	authHandler *AuthHandler,
	stateHandler *StateHandler,
	layout *LayoutHandler,
	sessionMW func(http.Handler) http.Handler,
	m *metrics.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	if m != nil {
		r.Use(middleware.CountRequests(m))
		r.Handle("/metrics", m.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(sessionMW)

		r.Get("/", layout.Home)
		r.Get("/signin", layout.SignIn)

		r.Route("/api", func(r chi.Router) {
			r.Get("/session", authHandler.Session)

			r.Group(func(r chi.Router) {
				// Only allow requests with Content-Type: application/json
				r.Use(chiMiddleware.AllowContentType("application/json"))
				r.Post("/login", authHandler.Login)
				r.Post("/logout", authHandler.Logout)
			})

			// Feature state is only reachable with a signed-in user.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser)
				r.Get("/state/{name}", stateHandler.List)
				r.With(chiMiddleware.AllowContentType("application/json")).
					Post("/state/{name}", stateHandler.Add)
			})
		})
	})

	return r
}
