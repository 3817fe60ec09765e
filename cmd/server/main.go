// Package main initializes and starts the CodeMonkey dashboard server,
// setting up configuration, logging, storage, the session provider,
// handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/codemonkey/internal/appstate"
	"github.com/atinyakov/codemonkey/internal/config"
	"github.com/atinyakov/codemonkey/internal/db"
	"github.com/atinyakov/codemonkey/internal/logger"
	"github.com/atinyakov/codemonkey/internal/metrics"
	"github.com/atinyakov/codemonkey/internal/middleware"
	"github.com/atinyakov/codemonkey/internal/models"
	"github.com/atinyakov/codemonkey/internal/repository"
	"github.com/atinyakov/codemonkey/internal/server/handler/http"
	"github.com/atinyakov/codemonkey/internal/service"
	"github.com/atinyakov/codemonkey/internal/session"
	"github.com/atinyakov/codemonkey/internal/storage"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// cleanerInterval is how often stale postgres entries are purged.
const cleanerInterval = time.Hour

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router, closeApp, err := newApp(ctx, options, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init application", zap.Error(err))
	}
	defer closeApp()

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if options.TLSEnabled() {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

// newApp wires storage, identities, the session provider and the router.
// The returned func releases the backing connections.
func newApp(ctx context.Context, options *config.Options, log *zap.Logger) (nethttp.Handler, func(), error) {
	fixtures := models.DefaultFixtures()
	if options.IdentitiesFile != "" {
		var err error
		if fixtures, err = repository.LoadFixtures(options.IdentitiesFile); err != nil {
			return nil, nil, err
		}
	}

	var (
		store    storage.Store
		repo     service.IdentityRepository = repository.NewStaticIdentityRepository(fixtures)
		closeFns []func()
	)
	closeAll := func() {
		for i := len(closeFns) - 1; i >= 0; i-- {
			closeFns[i]()
		}
	}

	switch options.StoreBackend {
	case config.BackendMemory:
		store = storage.NewMemoryStore()
	case config.BackendRedis:
		rs := storage.NewRedisStore(options.RedisAddr, storage.WithPrefix(options.RedisPrefix))
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closeFns = append(closeFns, func() { _ = rs.Close() })
		store = rs
	case config.BackendPostgres:
		pg, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		closeFns = append(closeFns, func() { _ = pg.Close() })
		pgRepo, err := seedIdentities(ctx, pg, fixtures)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		repo = pgRepo
		store = storage.NewPostgresStore(pg)
		if retention := time.Duration(options.KVRetention); retention > 0 {
			db.StartStaleEntryCleaner(ctx, pg, cleanerInterval, retention, log)
		}
	default:
		store = storage.NewFileStore(options.StoreFile, storage.WithFileLogger(log))
	}

	registry := appstate.Defaults(store, appstate.WithLogger(log))
	if err := registry.LoadAll(ctx); err != nil {
		closeAll()
		return nil, nil, err
	}
	observers := make([]session.LogoutObserver, 0)
	for _, c := range registry.All() {
		observers = append(observers, c)
	}

	m := metrics.New()
	verifier := service.NewAuthService(repo)
	sessionOpts := []session.Option{
		session.WithDelay(time.Duration(options.LoginDelay)),
		session.WithLogger(log),
		session.WithRecorder(m),
		session.WithSnapshotStore(store),
		session.WithLogoutObservers(observers...),
	}

	var sessionMW func(nethttp.Handler) nethttp.Handler
	if options.Persistence == config.PersistenceCookie {
		sessionMW = middleware.CookieSession(middleware.CookieSessionConfig{
			Verifier:   verifier,
			Secure:     options.TLSEnabled(),
			SignInPath: options.SignInPath,
			Options:    sessionOpts,
		})
	} else {
		p := session.NewProvider(ctx, verifier, session.NewStoreMirror(store), sessionOpts...)
		sessionMW = middleware.SharedSession(p)
	}

	log.Info("application initialized",
		zap.String("persistence", options.Persistence),
		zap.String("store", options.StoreBackend),
		zap.Int("identities", len(fixtures.Identities)),
	)

	router := http.NewRouter(
		&http.AuthHandler{},
		http.NewStateHandler(registry, log),
		&http.LayoutHandler{Theme: "dark", FollowSystem: true},
		sessionMW,
		m,
		log,
	)
	return router, closeAll, nil
}

func seedIdentities(ctx context.Context, pg *sql.DB, fx models.Fixtures) (*repository.PostgresIdentityRepository, error) {
	repo := repository.NewPostgresIdentityRepository(pg)
	if err := repo.Seed(ctx, fx); err != nil {
		return nil, fmt.Errorf("seed identities: %w", err)
	}
	return repo, nil
}
