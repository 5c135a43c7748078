// Package app wires the plume server runtime: config, logging,
// metrics, storage, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plume/cmd/identity"
	authapi "plume/cmd/internal/auth/api"
	"plume/cmd/internal/auth/session"
	"plume/cmd/internal/blog"
	blogapi "plume/cmd/internal/blog/api"
	"plume/cmd/security/password"
	"plume/cmd/security/token"
)

// Store is a small app-level lifecycle abstraction so DB-backed
// resources can be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// App is the server runtime: it owns the HTTP wiring and the session
// sweeper.
type App struct {
	cfg Config
	log Logger

	store     Store
	dbPool    *pgxpool.Pool
	dbEnabled bool

	sessions *session.Service

	auth *authapi.Handler
	blog *blogapi.Handler

	metrics        *Metrics
	metricsHandler http.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	pwCfg := password.DefaultConfig()
	pwCfg.Pepper = cfg.PasswordPepper
	pwCfg.Cost = cfg.BcryptCost
	hasher, err := password.New(pwCfg)
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		SecretKey:  cfg.TokenSecret,
		Algorithm:  cfg.TokenAlgorithm,
		Issuer:     cfg.TokenIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return nil, err
	}

	st, dbPool, dbEnabled, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	var (
		users     identity.Store
		sessStore session.Store
		blogStore blog.Store
	)
	if dbEnabled {
		users, err = identity.NewPostgresStore(dbPool)
		if err != nil {
			dbPool.Close()
			return nil, err
		}
		sessStore = session.NewPostgresStore(dbPool)
		blogStore = blog.NewPostgresStore(dbPool)
	} else {
		users = identity.NewMemoryStore()
		sessStore = session.NewMemoryStore()
		blogStore = blog.NewMemoryStore()
	}

	sessions, err := session.NewService(log, tokens, sessStore)
	if err != nil {
		return nil, err
	}

	authCfg := authapi.DefaultConfig()
	authCfg.CookieSecure = cfg.CookieSecure
	authHandler, err := authapi.NewHandler(log, authCfg, users, sessions, hasher, tokens)
	if err != nil {
		return nil, err
	}

	blogHandler, err := blogapi.NewHandler(log, blogapi.DefaultConfig(), blogStore, tokens)
	if err != nil {
		return nil, err
	}

	metrics, metricsHandler := NewMetrics()

	return &App{
		cfg:            cfg,
		log:            log,
		store:          st,
		dbPool:         dbPool,
		dbEnabled:      dbEnabled,
		sessions:       sessions,
		auth:           authHandler,
		blog:           blogHandler,
		metrics:        metrics,
		metricsHandler: metricsHandler,
	}, nil
}

// Run starts the HTTP server and the session sweeper and blocks until
// context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(a.metrics.Middleware)

	registerHTTP(r, a.log, a.cfg, a.dbPool, a.dbEnabled, a.metricsHandler)
	a.auth.Register(r)
	a.blog.Register(r)

	var handler http.Handler = r
	handler = WithRequestLogging(handler, a.log)
	handler = WithRecover(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.sessions.RunSweeper(sweepCtx, a.cfg.SweepInterval)

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStore decides between Postgres-backed persistence and the
// in-memory dev store.
func newStore(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, nil, false, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")
	return dbStore{pool: pool}, pool, true, nil
}
