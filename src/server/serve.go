package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/portfolio-api/server/src/server/app"
	"github.com/portfolio-api/server/src/server/config"
	"github.com/portfolio-api/server/src/server/handlers"
	authmw "github.com/portfolio-api/server/src/server/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	assembler := app.New(cfg)
	defer func() {
		if err := assembler.Close(); err != nil {
			slog.Error("Closing dependencies failed", "error", err)
		}
	}()

	deps, err := assembler.Build(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(routerConfig(cfg, deps)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Portfolio API listening", "port", cfg.Port, "store", cfg.StoreBackend, "cache", cfg.CacheBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// routerConfig wires assembled dependencies into the router, leaving
// optional capabilities as untyped nil when they are absent.
func routerConfig(cfg *config.Config, deps *app.Deps) handlers.RouterConfig {
	rc := handlers.RouterConfig{
		Portfolio:   deps.Gateway,
		Health:      &handlers.HealthHandler{Database: deps.Repository},
		CORSOrigins: cfg.CORSOrigins,
	}
	if deps.Cache != nil {
		rc.Health.Cache = deps.Cache
	}
	if deps.Snapshots != nil {
		rc.Cache = deps.Snapshots
	}
	if deps.Assets != nil {
		rc.Assets = deps.Assets
		rc.Health.Storage = deps.Assets
	}
	if deps.LocalFiles != nil {
		rc.Files = deps.LocalFiles.Handler()
		rc.FilesPrefix = deps.LocalFiles.BaseURL()
	}
	if cfg.AuthEnabled {
		rc.Auth = &authmw.AuthConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			Scope:    cfg.AuthScope,
		}
	}
	return rc
}
