// Package appstate implements the dashboard's feature state containers
// (snippets, chat, roadmap, quiz). Each container persists its entries as a
// JSON snapshot and is reset when the user logs out.
package appstate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/atinyakov/codemonkey/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Container names.
const (
	Snippet = "snippet"
	Chat    = "chat"
	Roadmap = "roadmap"
	Quiz    = "quiz"
)

// SnapshotKey returns the storage key a container persists under.
func SnapshotKey(name string) string {
	return name + "-storage"
}

// Container is one feature's state: an ordered list of entries kept in
// memory and mirrored to a key-value store.
type Container struct {
	name  string
	store storage.Store
	log   *zap.Logger

	mu      sync.Mutex
	entries []models.Entry
	now     func() time.Time
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used when a snapshot has to be discarded.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		c.log = l
	}
}

// NewContainer creates an empty container. Call Load to restore a snapshot.
func NewContainer(name string, store storage.Store, opts ...Option) *Container {
	c := &Container{name: name, store: store, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the container name.
func (c *Container) Name() string {
	return c.name
}

// SnapshotKey implements session.LogoutObserver.
func (c *Container) SnapshotKey() string {
	return SnapshotKey(c.name)
}

// Load replaces the in-memory entries with the persisted snapshot, if any.
// A snapshot that does not decode is deleted and the container starts empty;
// only store failures are returned.
func (c *Container) Load(ctx context.Context) error {
	raw, ok, err := c.store.Get(ctx, c.SnapshotKey())
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.entries = nil
		return nil
	}
	var entries []models.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.log.Warn("discarding malformed snapshot", zap.String("key", c.SnapshotKey()), zap.Error(err))
		c.entries = nil
		if err := c.store.Delete(ctx, c.SnapshotKey()); err != nil {
			return fmt.Errorf("delete %s snapshot: %w", c.name, err)
		}
		return nil
	}
	c.entries = entries
	return nil
}

// Add appends a new entry and persists the snapshot.
func (c *Container) Add(ctx context.Context, value string) (models.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := models.Entry{
		ID:        uuid.NewString(),
		Value:     value,
		CreatedAt: c.now().Unix(),
	}
	next := append(append([]models.Entry(nil), c.entries...), e)

	raw, err := json.Marshal(next)
	if err != nil {
		return models.Entry{}, err
	}
	if err := c.store.Set(ctx, c.SnapshotKey(), string(raw)); err != nil {
		return models.Entry{}, fmt.Errorf("save %s: %w", c.name, err)
	}
	c.entries = next
	return e, nil
}

// List returns a copy of the entries in insertion order.
func (c *Container) List() []models.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Entry{}, c.entries...)
}

// Reset implements session.LogoutObserver. It only clears memory; the
// snapshot is removed by the session provider.
func (c *Container) Reset(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

// Registry looks containers up by name.
type Registry struct {
	containers map[string]*Container
}

// Defaults builds the snippet, chat, roadmap and quiz containers on store.
func Defaults(store storage.Store, opts ...Option) *Registry {
	r := &Registry{containers: make(map[string]*Container)}
	for _, name := range []string{Snippet, Chat, Roadmap, Quiz} {
		r.containers[name] = NewContainer(name, store, opts...)
	}
	return r
}

// Get returns the named container.
func (r *Registry) Get(name string) (*Container, bool) {
	c, ok := r.containers[name]
	return c, ok
}

// All returns the containers sorted by name.
func (r *Registry) All() []*Container {
	out := make([]*Container, 0, len(r.containers))
	for _, c := range r.containers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// LoadAll restores every container from its snapshot.
func (r *Registry) LoadAll(ctx context.Context) error {
	for _, c := range r.All() {
		if err := c.Load(ctx); err != nil {
			return err
		}
	}
	return nil
}
