package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RaoAkif/BotFusion/internal/buildinfo"
	"github.com/RaoAkif/BotFusion/internal/config"
	"github.com/RaoAkif/BotFusion/internal/gateway"
	"github.com/RaoAkif/BotFusion/internal/store"
	"github.com/RaoAkif/BotFusion/internal/web"
)

// runServe handles the "botfusion serve" subcommand: load config, open
// the session database, build the completion gateway and rate limiter,
// start the HTTP server, and block until a shutdown signal arrives.
func runServe(ctx context.Context, stdout io.Writer, configPath string) error {
	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	logger.Info("starting BotFusion", "version", buildinfo.Version, "commit", buildinfo.GitCommit)
	logger.Info("config loaded",
		"path", cfgPath,
		"port", cfg.Listen.Port,
		"model", cfg.Models.Default,
	)

	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
		}
	}

	// Session database. The server only reads it for the history
	// endpoints; the chat client owns the writes.
	dbPath := cfg.SessionDBPath()
	sessions, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("open session database %s: %w", dbPath, err)
	}
	defer sessions.Close()
	logger.Info("session database opened", "path", dbPath)

	gw := gateway.New(gateway.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		APIKey:       cfg.Upstream.APIKey,
		DefaultModel: cfg.Models.Default,
	}, logger)

	var limiter *gateway.Limiter
	if cfg.RateLimit.MaxRequests > 0 {
		limiter = gateway.NewLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowSec)*time.Second)
	}

	server := web.NewServer(cfg.Listen.Address, cfg.Listen.Port, gw, limiter, sessions, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
