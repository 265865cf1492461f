package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/adapter/external/threatintel"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/config"
	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/usecase/threats"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := config.SetupLogger(cfg)
	logger.Info("Starting threat intel API",
		"env", cfg.App.Env,
		"port", cfg.App.Port,
	)

	aggregator := threatintel.NewAggregator(threatintel.AggregatorConfig{
		VirusTotalKey: cfg.ThreatIntel.VirusTotalKey,
		AbuseIPDBKey:  cfg.ThreatIntel.AbuseIPDBKey,
		GreyNoiseKey:  cfg.ThreatIntel.GreyNoiseKey,
		URLhausKey:    cfg.ThreatIntel.URLhausKey,
		Timeout:       cfg.ThreatIntel.Timeout,
		Logger:        logger,
	})
	threatsService := threats.NewService(aggregator, logger)

	configured := threatsService.GetConfiguredProviders()
	if len(configured) == 0 {
		logger.Warn("No threat intel provider configured, every lookup will be Unknown")
	} else {
		logger.Info("Threat intel providers configured", "providers", configured)
	}

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     newRouter(cfg, logger, threatsService),
		ReadTimeout: 15 * time.Second,
		// a lookup waits for the slowest provider
		WriteTimeout: cfg.ThreatIntel.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
