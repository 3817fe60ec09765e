package session

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/atinyakov/codemonkey/internal/storage"
)

// MirrorKey is the storage key and cookie name of the persisted session.
const MirrorKey = "currentUser"

// CookieMaxAge is the lifetime of the session cookie.
const CookieMaxAge = 7 * 24 * time.Hour

// Mirror persists the serialized session between page loads.
type Mirror interface {
	// Load returns the stored value and whether one was present.
	Load(ctx context.Context) (string, bool, error)
	// Save replaces the stored value.
	Save(ctx context.Context, value string) error
	// Clear removes the stored value. Clearing an absent value is not an error.
	Clear(ctx context.Context) error
}

// StoreMirror keeps the session under MirrorKey in a key-value store, with no expiry.
type StoreMirror struct {
	store storage.Store
}

// NewStoreMirror returns a mirror backed by store.
func NewStoreMirror(store storage.Store) *StoreMirror {
	return &StoreMirror{store: store}
}

func (m *StoreMirror) Load(ctx context.Context) (string, bool, error) {
	return m.store.Get(ctx, MirrorKey)
}

func (m *StoreMirror) Save(ctx context.Context, value string) error {
	return m.store.Set(ctx, MirrorKey, value)
}

func (m *StoreMirror) Clear(ctx context.Context) error {
	return m.store.Delete(ctx, MirrorKey)
}

// CookieMirror keeps the session in a site-wide cookie of one request/response
// pair. Writes made during the request are visible to later Loads.
type CookieMirror struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool

	mu      sync.Mutex
	written bool
	value   string
	present bool
}

// NewCookieMirror binds a mirror to the request and its response.
// secure marks the cookie Secure, which should follow whether TLS is served.
func NewCookieMirror(w http.ResponseWriter, r *http.Request, secure bool) *CookieMirror {
	return &CookieMirror{r: r, w: w, secure: secure}
}

func (m *CookieMirror) Load(_ context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.written {
		return m.value, m.present, nil
	}

	c, err := m.r.Cookie(MirrorKey)
	if err != nil {
		return "", false, nil
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		// undecodable cookies are handed on as malformed data
		return c.Value, true, nil
	}
	return v, true, nil
}

func (m *CookieMirror) Save(_ context.Context, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	http.SetCookie(m.w, &http.Cookie{
		Name:     MirrorKey,
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.written, m.value, m.present = true, value, true
	return nil
}

func (m *CookieMirror) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	http.SetCookie(m.w, &http.Cookie{
		Name:   MirrorKey,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	m.written, m.value, m.present = true, "", false
	return nil
}
