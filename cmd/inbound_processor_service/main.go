package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Chapstick53/phone-sms-api/internal/inbound_processor_service/app"
	"github.com/Chapstick53/phone-sms-api/internal/inbound_processor_service/repository/postgres"
	"github.com/Chapstick53/phone-sms-api/internal/platform/config"
	"github.com/Chapstick53/phone-sms-api/internal/platform/database"
	"github.com/Chapstick53/phone-sms-api/internal/platform/logger"
	"github.com/Chapstick53/phone-sms-api/internal/platform/messagebroker"
	scraper "github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
)

const (
	serviceName        = "inbound_processor_service"
	defaultMetricsPort = 9098
	defaultGRPCPort    = 50061
	shutdownTimeout    = 10 * time.Second
	consumerQueueGroup = "inbound_processor_group"
	eventBufferSize    = 100
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	appLogger.Info("Starting service...")

	metricsPort := cfg.InboundProcessorServiceMetricsPort
	if metricsPort == 0 {
		metricsPort = defaultMetricsPort
		appLogger.Info("Inbound Processor service metrics port not configured, using default", "port", metricsPort)
	}
	grpcPort := cfg.InboundProcessorGRPCPort
	if grpcPort == 0 {
		grpcPort = defaultGRPCPort
	}
	if cfg.NATSURL == "" {
		appLogger.Error("NATS URL is required by the inbound processor")
		os.Exit(1)
	}

	appLogger.Info("Configuration loaded",
		"log_level", cfg.LogLevel,
		"nats_url", cfg.NATSURL,
		"postgres_dsn_present", cfg.PostgresDSN != "",
		"metrics_port", metricsPort,
		"grpc_port", grpcPort,
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, database.PoolConfig{
		MaxConns:        cfg.PostgresMaxConns,
		MinConns:        cfg.PostgresMinConns,
		MaxConnLifetime: cfg.PostgresMaxConnLifetime,
		MaxConnIdleTime: cfg.PostgresMaxConnIdleTime,
	}, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	nc, err := messagebroker.NewNatsClient(cfg.NATSURL, serviceName, appLogger)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()

	archiveRepo := postgres.NewPgArchiveRepository(dbPool, appLogger)
	scrapedEvents := make(chan app.ScrapedEvent, eventBufferSize)
	consumer := app.NewArchiveConsumer(nc, appLogger.With("component", "archive_consumer"), scrapedEvents)
	processor := app.NewArchiveProcessor(archiveRepo, time.Now, appLogger.With("component", "archive_processor"))

	grpcMetrics := grpcprom.NewServerMetrics(
		grpcprom.WithServerHandlingTimeHistogram(),
	)
	if err := prometheus.DefaultRegisterer.Register(grpcMetrics); err != nil {
		appLogger.Warn("Failed to register gRPC Prometheus metrics", "error", err)
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", metricsPort),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, groupCtx := errgroup.WithContext(mainCtx)

	subject := scraper.ScrapedSubjectPrefix + "*"
	g.Go(func() error {
		appLogger.Info("Starting NATS consumer for scraped messages", "subject", subject, "queue_group", consumerQueueGroup)
		return consumer.StartConsuming(groupCtx, subject, consumerQueueGroup)
	})

	g.Go(func() error {
		appLogger.Info("Starting scraped event processor worker...")
		return processor.Run(groupCtx, scrapedEvents)
	})

	g.Go(func() error {
		appLogger.Info("Metrics server listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		appLogger.Info("gRPC health server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	appLogger.Info("Service components initialized and workers started. Service is ready.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var groupErr error
	select {
	case sig := <-sigCh:
		appLogger.Info("Received termination signal", "signal", sig.String())
	case <-groupCtx.Done():
		groupErr = context.Cause(groupCtx)
		appLogger.Error("A critical component failed, initiating shutdown", "error", groupErr)
	}

	appLogger.Info("Attempting graceful shutdown...")
	healthServer.Shutdown()
	mainCancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Metrics server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		appLogger.Error("Error during graceful shutdown of components", "error", err)
	}
	appLogger.Info("Service shutdown complete.")
}
