package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/straye-as/erp-gateway/docs"
	"github.com/straye-as/erp-gateway/internal/adapter"
	"github.com/straye-as/erp-gateway/internal/auth"
	"github.com/straye-as/erp-gateway/internal/config"
	"github.com/straye-as/erp-gateway/internal/convert"
	"github.com/straye-as/erp-gateway/internal/http/handler"
	"github.com/straye-as/erp-gateway/internal/http/middleware"
	"github.com/straye-as/erp-gateway/internal/http/router"
	"github.com/straye-as/erp-gateway/internal/jobs"
	"github.com/straye-as/erp-gateway/internal/logger"
	"go.uber.org/zap"

	// Backend adapters register themselves with the adapter registry
	_ "github.com/straye-as/erp-gateway/internal/backend/clouderp"
	_ "github.com/straye-as/erp-gateway/internal/backend/erpnext"
)

// @title ERP Gateway API
// @version 1.0
// @description Standardized REST API over heterogeneous ERP backends

// @contact.name API Support
// @contact.email support@straye.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	if basicCfg.App.Environment == "development" || basicCfg.App.Environment == "local" {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, secretProvider, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Load backend configuration records and fill in their credentials
	backendConfigs, err := adapter.LoadConfigDir(cfg.Backends.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to load backend configs: %w", err)
	}
	adapter.ResolveCredentials(ctx, backendConfigs, secretProvider, log)

	// Build the conversion and adapter layers
	converters := convert.NewRegistry(log)
	registry, err := adapter.NewRegistry(backendConfigs, converters, log)
	if err != nil {
		return fmt.Errorf("failed to build adapter registry: %w", err)
	}
	defer registry.CloseAll()

	log.Info("Backend adapters configured", zap.Strings("adapters", registry.Names()))

	// Session management
	sessions := auth.NewManager(registry, log, cfg.Session.TTLDuration())
	tokens := auth.NewTokenIssuer(cfg.Session.TokenSecret, cfg.Session.TTLDuration())

	// Initialize middleware and handlers
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)
	entityHandler := handler.NewEntityHandler(registry, sessions, tokens, log)
	authHandler := handler.NewAuthHandler(sessions, tokens, log)
	healthHandler := handler.NewHealthHandler(registry, log)

	// Setup router
	rt := router.NewRouter(cfg, log, rateLimiter, entityHandler, authHandler, healthHandler)

	// Start the expired-session sweep
	scheduler := jobs.NewScheduler(log)
	if err := jobs.RegisterSessionSweepJob(scheduler, sessions, log, cfg.Session.SweepSchedule); err != nil {
		return fmt.Errorf("failed to register session sweep job: %w", err)
	}
	scheduler.Start()

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		schedCtx := scheduler.Stop()
		<-schedCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
