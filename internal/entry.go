// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/postview/internal/api"
	"github.com/starford/postview/internal/blog"
	"github.com/starford/postview/internal/feed"
	"github.com/starford/postview/internal/index"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/session"
	"github.com/starford/postview/internal/sse"
	"github.com/starford/postview/internal/storage"
	"github.com/starford/postview/internal/watch"
)

// Backend is the wired service stack shared by the HTTP server and the MCP
// command.
type Backend struct {
	Service *blog.Service
	Broker  *sse.Broker
	DB      *index.DB
	Store   storage.Provider
}

// Close releases the broker and the index.
func (b *Backend) Close() error {
	if b.Broker != nil {
		b.Broker.Close()
	}
	return b.DB.Close()
}

// NewLogger builds the JSON logger used by every command and makes it the
// default.
func NewLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// Build opens storage and the index, wires the blog service with sessions
// and SSE, and loads the content directory once.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backend, error) {
	if err := os.MkdirAll(cfg.Content.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	broker := sse.NewBroker(cfg.SSE.RefreshThrottle)

	sessions := session.NewManager(
		session.WithMax(cfg.Sessions.Max),
		session.WithLabels(cfg.Site.Labels()),
		session.WithPublisher(broker),
		session.WithLogger(logger),
	)

	svc := blog.NewService(db,
		blog.WithStore(store, cfg.Content.Mode, cfg.Content.FeedFile),
		blog.WithSessions(sessions),
		blog.WithEvents(broker),
		blog.WithLogger(logger),
	)

	if _, err := svc.Reload(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	return &Backend{Service: svc, Broker: broker, DB: db, Store: store}, nil
}

// NewHandler builds the root router: health checks, the API under /api and
// the viewer pages at /.
func NewHandler(cfg *Config, b *Backend) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := b.DB.Ping(); err != nil {
			http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(b.Service, cfg.Auth.AuthEnabled(), cfg.Auth.Token, b.Broker))

	site := api.Site{
		Title:    cfg.Site.Title,
		Labels:   cfg.Site.Labels(),
		Callback: cfg.Site.Callback,
	}
	if cfg.Site.FeedScript {
		site.FeedURL = "/feed.js"
	}
	r.Mount("/", api.NewWebRouter(b.Service, site))

	return r
}

// watchExtensions lists the file extensions that trigger a reload.
func watchExtensions(cfg *Config) []string {
	if cfg.Content.Mode == blog.ModeMarkdown {
		return []string{".md"}
	}
	return []string{strings.ToLower(filepath.Ext(cfg.Content.FeedFile))}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := NewLogger(cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("content_mode", cfg.Content.Mode),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("feed_url", cfg.Feed.URL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	backend, err := Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	svc := backend.Service

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: NewHandler(cfg, backend),
	}

	fetcher := app.fetcher
	if fetcher == nil && cfg.Feed.Enabled() {
		fetcher = feed.NewFetcher(cfg.Feed.URL, cfg.Feed.Format, cfg.Feed.Timeout, cfg.Feed.MinGap)
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the content dir on change.
	if cfg.Content.Watch {
		w := watch.New(cfg.Content.Dir, func(ctx context.Context, changed []string) error {
			res, err := svc.Reload(ctx)
			if err != nil {
				return err
			}
			logger.Debug("content reloaded",
				slog.Int("changed", len(changed)),
				slog.Bool("unchanged", res.Unchanged))
			return nil
		}, watch.WithExtensions(watchExtensions(cfg)...), watch.WithLogger(logger))

		g.Go(func() error {
			if err := w.Run(gCtx); err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Poll the remote feed.
	if fetcher != nil {
		g.Go(func() error {
			return fetcher.Poll(gCtx, cfg.Feed.Interval, func(ctx context.Context, p *models.Payload, _ []byte) error {
				_, err := svc.Apply(ctx, blog.SourceRemote, p)
				return err
			}, logger)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the HTTP server has stopped so the
// watcher and poller exit too.
var errShutdown = errors.New("shutdown")
