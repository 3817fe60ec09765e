package http

import (
	"net/http"
	"strings"
	"testing"
)

func TestLayoutHandler(t *testing.T) {
	env := newTestEnv(t, defaultVerifier())

	rec := env.do(http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>" + SiteTitle + "</title>",
		`content="` + SiteDescription + `"`,
		`class="dark"`,
		`href="/signin"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected home page to contain %q", want)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}

	if rec := env.do(http.MethodPost, "/api/login", `{"username":"admin","password":"12345"}`); rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d", rec.Code)
	}
	body = env.do(http.MethodGet, "/", "").Body.String()
	if !strings.Contains(body, "Welcome back, Admin User") {
		t.Error("expected the signed-in user's name on the home page")
	}
	if !strings.Contains(body, "Premium") {
		t.Error("expected the premium badge for admin")
	}
}

func TestLayoutHandler_SignIn(t *testing.T) {
	env := newTestEnv(t, defaultVerifier())

	rec := env.do(http.MethodGet, "/signin", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<form id="signin">`) {
		t.Error("expected the sign-in form")
	}
}

func TestRouter_Metrics(t *testing.T) {
	env := newTestEnv(t, defaultVerifier())
	env.do(http.MethodPost, "/api/login", `{"username":"admin","password":"wrong"}`)

	rec := env.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `codemonkey_login_attempts_total{result="invalid_credentials"} 1`) {
		t.Errorf("expected the failed login to be counted, got:\n%s", rec.Body.String())
	}
}
