// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/topicscout/internal/api"
	"github.com/starford/topicscout/internal/apperr"
	"github.com/starford/topicscout/internal/index"
	"github.com/starford/topicscout/internal/mcpserver"
	"github.com/starford/topicscout/internal/metrics"
	"github.com/starford/topicscout/internal/notify"
	"github.com/starford/topicscout/internal/report"
	"github.com/starford/topicscout/internal/sse"
	"github.com/starford/topicscout/internal/storage"
	"github.com/starford/topicscout/internal/topics"
	"github.com/starford/topicscout/internal/vault"
)

// AnalyzeOptions carries the one-shot analyze flags. Nil thresholds use
// the configured analysis defaults.
type AnalyzeOptions struct {
	MinNotes     *int
	MinWords     *int
	DryRun       bool
	Notify       bool
	GitHubOutput string
}

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// newService wires the topic pipeline to src. searcher may be nil.
func newService(cfg *Config, src topics.NoteSource, searcher topics.Searcher, m *metrics.Metrics, logger *slog.Logger) *topics.Service {
	opts := []topics.Option{
		topics.WithLogger(logger),
		topics.WithMetrics(m),
		topics.WithDefaults(cfg.Analysis.MinNotes, cfg.Analysis.MinWords),
		topics.WithRecentWindow(cfg.Analysis.RecentWindow()),
	}
	sinks := notify.NewFanout(logger, m, notify.Configured(
		cfg.Notify.Telegram.BotToken,
		cfg.Notify.Telegram.ChatID,
		cfg.Notify.Discord.WebhookURL,
	)...)
	if sinks.Len() > 0 {
		opts = append(opts, topics.WithSink(sinks))
	}
	if searcher != nil {
		opts = append(opts, topics.WithSearcher(searcher))
	}

	claude, err := report.NewClaude(cfg.Summarizer.Claude())
	switch {
	case err == nil:
		opts = append(opts, topics.WithSummarizer(claude))
	case errors.Is(err, apperr.ErrNotConfigured):
		logger.Warn("summarizer disabled, only dry runs will work", slog.String("reason", err.Error()))
	default:
		logger.Warn("summarizer init failed", slog.String("error", err.Error()))
	}

	return topics.NewService(src, opts...)
}

// openIndex opens the SQLite index and brings it up to date with the vault.
func openIndex(cfg *Config, logger *slog.Logger) (storage.Provider, *index.DB, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return store, db, nil
}

// Run starts the HTTP server backed by the live index.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg.App.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("folders", strings.Join(cfg.Vault.Folders, ",")),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, err := openIndex(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	m := metrics.New()
	svc := newService(cfg, index.NewSource(db, cfg.Vault.Folders), db, m, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health and metrics endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := db.Count(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"index unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher feeds the index and the SSE stream.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, store, cfg.Vault.Path, logger, broker.PublishNoteEvent); err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Unblocks the watcher after a signal.
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunAnalyze scans the vault once, prints the report and optionally
// notifies and writes a GitHub Actions output.
func RunAnalyze(ctx context.Context, req AnalyzeOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg, out := app.config, app.out

	// stdout carries the report.
	logger := newLogger(cfg.App.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	if info, err := os.Stat(cfg.Vault.Path); err != nil || !info.IsDir() {
		return fmt.Errorf("vault path does not exist: %s", cfg.Vault.Path)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	logger.Info("Loading vault", slog.String("path", store.Root()), slog.String("folders", strings.Join(cfg.Vault.Folders, ",")))
	fmt.Fprintf(out, "Loading vault from: %s\n", store.Root())

	svc := newService(cfg, vault.NewSource(store, cfg.Vault.Folders, logger), nil, nil, logger)
	a, err := svc.Analyze(ctx, topics.AnalyzeRequest{
		MinNotes: req.MinNotes,
		MinWords: req.MinWords,
		DryRun:   req.DryRun,
		Notify:   req.Notify,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Found %d notes\n", a.NoteCount)
	if a.NoteCount == 0 {
		fmt.Fprintln(out, "No notes found. Check vault path and folders.")
		return nil
	}
	fmt.Fprintln(out, "Clustering notes by tags and links...")
	fmt.Fprintf(out, "Found %d significant clusters\n", len(a.Clusters))

	switch {
	case len(a.Clusters) == 0:
		fmt.Fprintln(out, "No significant topic clusters found.")
		fmt.Fprintln(out, "Tips: Add more tags to your notes, or link related notes together.")
		return nil
	case req.DryRun:
		fmt.Fprint(out, "\n"+a.Report)
		return nil
	}

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(out, "\n%s\nBLOG READINESS ANALYSIS\n%s\n%s\n%s\n", rule, rule, a.Report, rule)
	if req.Notify {
		if a.Notified {
			fmt.Fprintln(out, "Notification sent.")
		} else {
			fmt.Fprintln(out, "Notification not delivered.")
		}
	}

	if req.GitHubOutput != "" {
		if err := report.WriteGitHubOutput(req.GitHubOutput, "analysis", a.Report); err != nil {
			return err
		}
	}
	return nil
}

// RunMCP serves MCP over stdio, backed by the live index.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// stdout belongs to the protocol.
	logger := newLogger(cfg.App.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	store, db, err := openIndex(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := index.Watch(ctx, db, store, cfg.Vault.Path, logger, nil); err != nil {
			logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	svc := newService(cfg, index.NewSource(db, cfg.Vault.Folders), db, metrics.New(), logger)
	logger.Info("MCP server starting", slog.String("version", app.version))
	return mcpserver.New(svc, db, app.version).ServeStdio()
}
