// Package session holds the authentication context of the dashboard: the
// current identity, its persisted mirror and the login/logout transitions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/atinyakov/codemonkey/internal/service"
	"github.com/atinyakov/codemonkey/internal/storage"
	"go.uber.org/zap"
)

// DefaultLoginDelay is the simulated verification latency.
const DefaultLoginDelay = 800 * time.Millisecond

var (
	// ErrInvalidCredentials is returned by Login for unknown handles and wrong secrets alike.
	ErrInvalidCredentials = service.ErrInvalidCredentials
	// ErrSuperseded is returned by a Login that was overtaken by a newer Login or a Logout.
	ErrSuperseded = errors.New("login superseded by a newer session change")
)

// Login results reported to a Recorder.
const (
	ResultSuccess            = "success"
	ResultInvalidCredentials = "invalid_credentials"
	ResultSuperseded         = "superseded"
	ResultCanceled           = "canceled"
	ResultError              = "error"
)

// Verifier answers whether a handle/secret pair identifies a known user.
type Verifier interface {
	Verify(ctx context.Context, handle, secret string) (models.Identity, error)
}

// LogoutObserver is an application state container that must be reset when
// the user logs out. Its persisted snapshot lives under SnapshotKey in the
// key-value storage area.
type LogoutObserver interface {
	Reset(ctx context.Context)
	SnapshotKey() string
}

// Navigator moves the user to another page, e.g. the sign-in page after logout.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// Recorder receives counters for session transitions.
type Recorder interface {
	LoginAttempt(result string)
	Logout()
}

// Snapshot is the value republished to listeners after every state change.
type Snapshot struct {
	User    *models.Identity
	Loading bool
}

// Provider owns the current session. It is safe for concurrent use.
type Provider struct {
	verifier Verifier
	mirror   Mirror
	store    storage.Store
	delay    time.Duration
	log      *zap.Logger
	recorder Recorder

	navigator  Navigator
	signInPath string

	mu        sync.Mutex
	user      *models.Identity
	loading   bool
	seq       uint64
	observers []LogoutObserver
	listeners []func(Snapshot)
}

// Option configures a Provider.
type Option func(*Provider)

// WithDelay overrides the simulated login delay.
func WithDelay(d time.Duration) Option {
	return func(p *Provider) {
		p.delay = d
	}
}

// WithLogger sets the logger used for discarded mirrors and storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		p.log = l
	}
}

// WithSnapshotStore sets the key-value area from which observer snapshots are
// deleted on logout.
func WithSnapshotStore(s storage.Store) Option {
	return func(p *Provider) {
		p.store = s
	}
}

// WithLogoutObservers registers observers before the provider initializes.
func WithLogoutObservers(obs ...LogoutObserver) Option {
	return func(p *Provider) {
		p.observers = append(p.observers, obs...)
	}
}

// WithSignInRedirect makes Logout finish by navigating to path.
func WithSignInRedirect(n Navigator, path string) Option {
	return func(p *Provider) {
		p.navigator = n
		p.signInPath = path
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Provider) {
		p.recorder = r
	}
}

// WithListener subscribes fn to state changes, including the ones made while
// the provider initializes.
func WithListener(fn func(Snapshot)) Option {
	return func(p *Provider) {
		p.listeners = append(p.listeners, fn)
	}
}

// NewProvider creates a provider and rehydrates the session from mirror.
// A malformed mirror is deleted and the session starts absent.
func NewProvider(ctx context.Context, verifier Verifier, mirror Mirror, opts ...Option) *Provider {
	p := &Provider{
		verifier: verifier,
		mirror:   mirror,
		delay:    DefaultLoginDelay,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.mu.Lock()
	p.loading = true
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)

	user := p.rehydrate(ctx)

	p.mu.Lock()
	p.user = user
	p.loading = false
	snap = p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)

	return p
}

func (p *Provider) rehydrate(ctx context.Context) *models.Identity {
	raw, ok, err := p.mirror.Load(ctx)
	if err != nil {
		p.log.Warn("failed to read stored user", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var id models.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || !id.Valid() {
		if err == nil {
			err = errors.New("stored user is missing id or username")
		}
		p.log.Warn("failed to parse stored user", zap.Error(err))
		if err := p.mirror.Clear(ctx); err != nil {
			p.log.Warn("failed to remove stored user", zap.Error(err))
		}
		return nil
	}
	return &id
}

// User returns the current identity and whether a session is present.
func (p *Provider) User() (models.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return models.Identity{}, false
	}
	return *p.user, true
}

// IsLoading reports whether initialization or a login is in progress.
func (p *Provider) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Snapshot returns the current user and loading flag together.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// RegisterLogoutObserver adds o to the containers reset on logout.
func (p *Provider) RegisterLogoutObserver(o LogoutObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, o)
}

// Login waits for the simulated delay and then verifies handle/secret.
// On success the session and its mirror are updated and the identity is
// returned. On failure the session is left as it was.
//
// Only the most recently started Login may commit; an earlier one that
// settles later returns ErrSuperseded. A cancelled ctx returns ctx.Err().
func (p *Provider) Login(ctx context.Context, handle, secret string) (models.Identity, error) {
	p.mu.Lock()
	p.seq++
	attempt := p.seq
	p.loading = true
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		p.settle(attempt)
		p.record(ResultCanceled)
		return models.Identity{}, ctx.Err()
	case <-timer.C:
	}

	id, verr := p.verifier.Verify(ctx, handle, secret)

	p.mu.Lock()
	if attempt != p.seq {
		p.mu.Unlock()
		p.record(ResultSuperseded)
		return models.Identity{}, ErrSuperseded
	}
	p.loading = false

	if verr != nil {
		snap = p.snapshotLocked()
		p.mu.Unlock()
		p.publish(snap)
		if errors.Is(verr, ErrInvalidCredentials) {
			p.record(ResultInvalidCredentials)
		} else {
			p.log.Error("login verification failed", zap.String("username", handle), zap.Error(verr))
			p.record(ResultError)
		}
		return models.Identity{}, verr
	}

	if err := p.persistLocked(ctx, id); err != nil {
		snap = p.snapshotLocked()
		p.mu.Unlock()
		p.publish(snap)
		p.log.Error("failed to store user", zap.String("username", handle), zap.Error(err))
		p.record(ResultError)
		return models.Identity{}, err
	}
	p.user = &id
	snap = p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)

	p.log.Info("user logged in", zap.String("id", id.ID), zap.String("username", id.Username))
	p.record(ResultSuccess)
	return id, nil
}

func (p *Provider) persistLocked(ctx context.Context, id models.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := p.mirror.Save(ctx, string(raw)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// settle clears the loading flag if attempt is still the latest one.
func (p *Provider) settle(attempt uint64) {
	p.mu.Lock()
	if attempt != p.seq {
		p.mu.Unlock()
		return
	}
	p.loading = false
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// Logout resets every registered observer, deletes their snapshots, clears
// the session and its mirror, and finally navigates to the sign-in page when
// one is configured. It never fails; storage errors are logged. Calling it
// without a session is a no-op apart from the cleanup itself.
func (p *Provider) Logout(ctx context.Context) {
	p.mu.Lock()
	observers := make([]LogoutObserver, len(p.observers))
	copy(observers, p.observers)
	p.mu.Unlock()

	for _, o := range observers {
		o.Reset(ctx)
	}
	for _, o := range observers {
		key := o.SnapshotKey()
		if p.store == nil || key == "" {
			continue
		}
		if err := p.store.Delete(ctx, key); err != nil {
			p.log.Warn("failed to delete snapshot", zap.String("key", key), zap.Error(err))
		}
	}

	p.mu.Lock()
	// pending logins must not resurrect the session
	p.seq++
	p.user = nil
	p.loading = false
	if err := p.mirror.Clear(ctx); err != nil {
		p.log.Warn("failed to remove stored user", zap.Error(err))
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)

	if p.recorder != nil {
		p.recorder.Logout()
	}
	if p.navigator != nil {
		p.navigator.Navigate(ctx, p.signInPath)
	}
}

func (p *Provider) snapshotLocked() Snapshot {
	s := Snapshot{Loading: p.loading}
	if p.user != nil {
		u := *p.user
		s.User = &u
	}
	return s
}

func (p *Provider) publish(s Snapshot) {
	for _, fn := range p.listeners {
		fn(s)
	}
}

func (p *Provider) record(result string) {
	if p.recorder != nil {
		p.recorder.LoginAttempt(result)
	}
}
