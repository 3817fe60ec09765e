// Package client holds the command-line side of the dashboard: a session
// provider over a local JSON store and the interactive credential prompt.
package client

import (
	"context"
	"fmt"

	"github.com/atinyakov/codemonkey/internal/appstate"
	"github.com/atinyakov/codemonkey/internal/session"
	"github.com/atinyakov/codemonkey/internal/storage"
	"go.uber.org/zap"
)

// DefaultStorePath is the file the CLI keeps its session and state in.
const DefaultStorePath = "storage.json"

// Workspace is the CLI's view of one local session.
type Workspace struct {
	Store    *storage.FileStore
	Registry *appstate.Registry
	Session  *session.Provider
}

// Open restores the feature state and the session stored at path.
// Every feature container is registered for reset on logout. Unreadable
// data is discarded with a warning on log.
func Open(ctx context.Context, path string, verifier session.Verifier, log *zap.Logger, opts ...session.Option) (*Workspace, error) {
	store := storage.NewFileStore(path, storage.WithFileLogger(log))
	reg := appstate.Defaults(store, appstate.WithLogger(log))
	if err := reg.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("load state from %s: %w", path, err)
	}

	observers := make([]session.LogoutObserver, 0, len(reg.All()))
	for _, c := range reg.All() {
		observers = append(observers, c)
	}
	opts = append([]session.Option{
		session.WithLogger(log),
		session.WithSnapshotStore(store),
		session.WithLogoutObservers(observers...),
	}, opts...)

	return &Workspace{
		Store:    store,
		Registry: reg,
		Session:  session.NewProvider(ctx, verifier, session.NewStoreMirror(store), opts...),
	}, nil
}
