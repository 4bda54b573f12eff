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

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chapstick53/phone-sms-api/internal/platform/config"
	"github.com/Chapstick53/phone-sms-api/internal/platform/logger"
	"github.com/Chapstick53/phone-sms-api/internal/platform/messagebroker"
	"github.com/Chapstick53/phone-sms-api/internal/public_api_service/adapters/events"
	httptransport "github.com/Chapstick53/phone-sms-api/internal/public_api_service/transport/http"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/app"
)

const (
	serviceName     = "public_api_service"
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	appLogger.Info("Public API service starting...", "port", cfg.PublicAPIServicePort, "upstream", cfg.UpstreamBaseURL)

	var publisher app.EventPublisher
	if cfg.NATSURL != "" {
		nc, err := messagebroker.NewNatsClient(cfg.NATSURL, serviceName, appLogger)
		if err != nil {
			appLogger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		publisher = events.NewScrapedPublisher(nc, appLogger)
		appLogger.Info("Scraped message events enabled", "nats_url", cfg.NATSURL)
	} else {
		appLogger.Info("NATS URL not configured, scraped message events disabled")
	}

	pipeline, err := app.NewPipeline(cfg, publisher, appLogger)
	if err != nil {
		appLogger.Error("Failed to build scraper pipeline", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			appLogger.Error("Browser shutdown failed", "error", err)
		}
	}()

	router := httptransport.NewRouter(pipeline.Service, httptransport.RouterConfig{
		ThrottleLimit:   cfg.HTTPThrottleLimit,
		ThrottleBacklog: cfg.HTTPThrottleBacklog,
		ThrottleTimeout: cfg.HTTPThrottleTimeout,
		AdminSecret:     cfg.JWTAdminSecret,
		MetricsHandler:  promhttp.Handler(),
	}, appLogger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.PublicAPIServicePort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Public API server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quitChan:
		appLogger.Info("Shutdown signal received, shutting down HTTP server...", "signal", sig.String())
	case err := <-serverErr:
		appLogger.Error("HTTP server failed to serve", "error", err)
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Public API service shut down.")
}
