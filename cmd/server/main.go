package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/config"
	"github.com/cardfeed/backend/internal/kernel"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/seed"
	"github.com/cardfeed/backend/internal/server"
	"github.com/cardfeed/backend/internal/telemetry"
)

const serviceName = "cardfeed-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== CardFeed server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
		SamplingRate: cfg.OTelSamplingRate,
	})
	if err != nil {
		logger.FatalWithFields("Failed to initialize tracing", err)
	}

	k, err := kernel.Bootstrap(ctx, cfg)
	if err != nil {
		logger.FatalWithFields("Failed to initialize services", err)
	}
	// registered first so spans from the other cleanups still get flushed
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.WarnWithFields("Tracer shutdown failed", err)
		}
	}()

	if err := k.Validate(); err != nil {
		logger.FatalWithFields("Kernel validation failed", err)
	}

	if cfg.SeedDefaults {
		created, err := seed.LoadDefaults(ctx, k.Store(), seed.Defaults{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			Users:         seed.DemoUsers(),
		})
		if err != nil {
			logger.FatalWithFields("Failed to load default accounts", err)
		}
		logger.Log.Info("Default accounts loaded", zap.Int("created", created))
	}

	h := k.Handlers()
	h.SetSecureCookies(cfg.IsProduction())

	r := server.NewRouter(server.RouterOptions{
		Handlers:    h,
		Auth:        k.Auth(),
		Redis:       k.Cache(),
		CacheTTL:    cfg.CacheTTL,
		CORSOrigins: cfg.CORSOrigins,
		ServiceName: serviceName,
		Tracing:     cfg.OTelEnabled,
		RateLimit:   true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("CardFeed backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if err := k.Cleanup(shutdownCtx); err != nil {
		logger.ErrorWithFields("Cleanup finished with errors", err)
	}

	logger.Log.Info("Server exited")
}
