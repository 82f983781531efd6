package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/codespace-operator/keycloak-demo/internal/api"
	"github.com/codespace-operator/keycloak-demo/internal/config"
	"github.com/codespace-operator/keycloak-demo/pkg/auth"
	"github.com/codespace-operator/keycloak-demo/pkg/common"
	"github.com/codespace-operator/keycloak-demo/pkg/rbac"
)

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fatal(slog.Default(), "Failed to load config", err)
	}

	logCfg := cfg.Log
	logCfg.Writer = os.Stderr
	logger := common.InitializeLogging(logCfg)

	info := common.GetBuildInfo()
	logger.Info("Starting keycloak-demo",
		"version", info["version"],
		"commit", info["gitCommit"],
		"built", info["buildDate"],
		"go", info["goVersion"])

	if err := cfg.Validate(); err != nil {
		fatal(logger, "Invalid configuration", err)
	}

	authCfg, err := cfg.ToAuthConfig()
	if err != nil {
		fatal(logger, "Failed to load auth configuration", err)
	}
	authManager, err := auth.NewAuthManager(ctx, authCfg, logger)
	if err != nil {
		fatal(logger, "Failed to initialize authentication", err)
	}

	var hierarchy rbac.RoleHierarchy
	if cfg.RBAC.Enabled() {
		r, err := rbac.NewRBAC(ctx, rbac.RBACConfig{
			ModelPath:  cfg.RBAC.ModelPath,
			PolicyPath: cfg.RBAC.PolicyPath,
			Logger:     logger,
			Watch:      cfg.RBAC.Watch,
		})
		if err != nil {
			fatal(logger, "Failed to load role hierarchy", err)
		}
		hierarchy = r
	}

	handler := api.NewRouter(api.Deps{
		Auth:        authManager,
		Gate:        rbac.NewGate(hierarchy, logger),
		Logger:      logger,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Server.Addr, "providers", authManager.ListProviders())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fatal(logger, "HTTP server failed", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
