// Command a11ycheck is the accessibility audit server.
//
// Usage:
//
//	a11ycheck -config a11ycheck.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/a11yaudit/a11ycheck/api"
	"github.com/a11yaudit/a11ycheck/inference"
	"github.com/a11yaudit/a11ycheck/internal/store"
	"github.com/a11yaudit/a11ycheck/langid"
	"github.com/a11yaudit/a11ycheck/render"
	"github.com/a11yaudit/a11ycheck/textdetect"
	"github.com/a11yaudit/a11ycheck/wcag"
)

func main() {
	configPath := flag.String("config", "a11ycheck.yaml", "path to YAML config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath); err != nil {
		logger.Error("a11ycheck: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath string) error {
	cfg, err := api.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Inference.EASTURL == "" {
		return fmt.Errorf("config: inference.east_url is required")
	}

	identifier, err := langid.New(cfg.Language.Languages)
	if err != nil {
		return fmt.Errorf("language identifier: %w", err)
	}

	east := inference.NewEASTClient(cfg.Inference.EASTURL, cfg.Inference.Timeout, logger)

	var scorer wcag.SimilarityScorer
	if cfg.Inference.SimilarityURL != "" {
		scorer = inference.NewSimilarityClient(cfg.Inference.SimilarityURL, cfg.Inference.Timeout, logger)
	} else {
		logger.Info("alt-text detection disabled: no similarity backend configured")
	}

	checker, err := wcag.NewChecker(wcag.Config{
		TextDetector: textdetect.New(east),
		Language:     identifier,
		AltText:      scorer,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("checker: %w", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer st.Close()

	manager := render.NewManager(render.Config{
		RemoteURL:       cfg.Browser.Remote,
		NavigateTimeout: cfg.Browser.NavigateTimeout,
		Logger:          logger,
	})
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	defer manager.Close()

	server := api.NewServer(cfg.Server, api.OpenSession(manager), checker, st, logger)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      http.TimeoutHandler(server, cfg.Server.RequestTimeout, "request timed out"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("a11ycheck: listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("a11ycheck: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
