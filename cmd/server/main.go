package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/catalog"
	"github.com/p-n-ai/pai-quiz/internal/httpapi"
	"github.com/p-n-ai/pai-quiz/internal/locale"
	"github.com/p-n-ai/pai-quiz/internal/platform/cache"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/platform/database"
	"github.com/p-n-ai/pai-quiz/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger, err = newLogger(cfg.Log, os.Stdout)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	go a.sessions.Run(ctx)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "source", cfg.Data.Source)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %q", cfg.Format)
	}
}

// app holds the wired dependencies of the server.
type app struct {
	handler  http.Handler
	sessions *session.Manager
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp connects the configured backends and builds the HTTP handler.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	checks := map[string]httpapi.HealthChecker{}

	var db *database.DB
	if cfg.HasDatabase() {
		var err error
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		checks["database"] = db
		slog.Info("database connected")
	}

	store, err := newStore(cfg, db)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.HasCache() {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting cache: %w", err)
		}
		a.closers = append(a.closers, func() { c.Close() })
		checks["cache"] = c
		store = catalog.NewCachedStore(store, c, cfg.Cache.TTL)
		slog.Info("document cache enabled", "ttl", cfg.Cache.TTL)
	}

	cat, err := catalog.New(store)
	if err != nil {
		a.Close()
		return nil, err
	}

	loc, err := locale.New(cfg.Locale.Default)
	if err != nil {
		a.Close()
		return nil, err
	}

	var events session.EventLogger = session.NopEventLogger{}
	if db != nil {
		events = session.NewPostgresEventLogger(db.Pool)
	}

	a.sessions = session.NewManager(cat, session.Options{
		SoundDefault: cfg.Session.SoundDefault,
		IdleTTL:      cfg.Session.IdleTTL,
		Events:       events,
	})
	a.handler = httpapi.New(httpapi.Options{
		Catalog:  cat,
		Sessions: a.sessions,
		Locale:   loc,
		Checks:   checks,
	}).Handler()
	return a, nil
}

// newStore picks the document store for the configured source.
func newStore(cfg *config.Config, db *database.DB) (catalog.DocumentStore, error) {
	switch cfg.Data.Source {
	case config.SourceFile:
		return catalog.NewFileStore(cfg.Data.Dir), nil
	case config.SourceHTTP:
		return catalog.NewHTTPStore(cfg.Data.BaseURL, nil), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres source needs QUIZ_DATABASE_URL")
		}
		return catalog.NewPostgresStore(db.Pool)
	default:
		return nil, fmt.Errorf("unknown data source: %q", cfg.Data.Source)
	}
}
