package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lepinkainen/humanlog"

	"github.com/hoanghai1803/booker/internal/api"
	"github.com/hoanghai1803/booker/internal/config"
	"github.com/hoanghai1803/booker/internal/library"
	"github.com/hoanghai1803/booker/internal/openlibrary"
	"github.com/hoanghai1803/booker/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	initLogging(cfg.Log)

	// Ensure data directory exists.
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(cfg.DBPath(*dataDir))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run schema migrations.
	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := storage.NewStore(db)

	client := openlibrary.NewClient(openlibrary.Options{
		BaseURL:           cfg.OpenLibrary.BaseURL,
		CoversURL:         cfg.OpenLibrary.CoversURL,
		Timeout:           cfg.OpenLibrary.Timeout(),
		RequestsPerSecond: cfg.OpenLibrary.RequestsPerSecond,
		UserAgent:         cfg.OpenLibrary.UserAgent,
	})

	svc := library.NewService(store, client,
		library.WithDefaultBooksTarget(cfg.Goals.DefaultBooksTarget),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(svc, store, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "addr", "http://"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout().String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// initLogging installs the default slog handler: colored human-readable
// output, or JSON lines for log collectors.
func initLogging(cfg config.LogConfig) {
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	} else {
		handler = humanlog.NewHandler(os.Stdout, &humanlog.Options{Level: cfg.SlogLevel()})
	}
	slog.SetDefault(slog.New(handler))
}
