package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/atinyakov/codemonkey/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var layoutTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html"))

// Site metadata rendered by the root layout.
const (
	SiteTitle       = "CodeMonkey - Developer Dashboard"
	SiteDescription = "AI-powered developer tools and resources"
)

// LayoutHandler renders the root layout around the home and sign-in pages.
type LayoutHandler struct {
	// Theme is the default color scheme class ("dark" or "light").
	Theme string
	// FollowSystem lets the client switch to the OS color scheme.
	FollowSystem bool
}

type layoutData struct {
	Title        string
	Description  string
	Theme        string
	FollowSystem bool
	Page         string
	User         *models.Identity
}

// Home handles GET /.
func (h *LayoutHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home")
}

// SignIn handles GET /signin.
func (h *LayoutHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signin")
}

func (h *LayoutHandler) render(w http.ResponseWriter, r *http.Request, page string) {
	theme := h.Theme
	if theme == "" {
		theme = "dark"
	}
	data := layoutData{
		Title:        SiteTitle,
		Description:  SiteDescription,
		Theme:        theme,
		FollowSystem: h.FollowSystem,
		Page:         page,
		User:         session.FromContext(r.Context()).Snapshot().User,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layoutTemplate.ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}
