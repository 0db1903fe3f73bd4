package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harborhealth/bookingbot/cmd/mainconfig"
	"github.com/harborhealth/bookingbot/internal/api/router"
	appconfig "github.com/harborhealth/bookingbot/internal/config"
	"github.com/harborhealth/bookingbot/internal/http/handlers"
	"github.com/harborhealth/bookingbot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting bookingbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Build the dialogue engine
	engine, err := mainconfig.LoadEngine(context.Background(), cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("failed to build dialogue engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(engine.Controller, engine.Identity, engine.Transcript, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:         logger,
		ChatHandler:    chatHandler,
		MetricsHandler: promhttp.Handler(),
		ChatRateLimit:  5,
		ChatRateBurst:  10,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}
