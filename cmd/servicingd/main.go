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

	"github.com/bibbank/loan-servicing/internal/application/usecase"
	"github.com/bibbank/loan-servicing/internal/domain/service"
	"github.com/bibbank/loan-servicing/internal/domain/valueobject"
	"github.com/bibbank/loan-servicing/internal/infrastructure/clock"
	"github.com/bibbank/loan-servicing/internal/infrastructure/config"
	"github.com/bibbank/loan-servicing/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/loan-servicing/internal/infrastructure/persistence/postgres"
	grpcPresentation "github.com/bibbank/loan-servicing/internal/presentation/grpc"
	"github.com/bibbank/loan-servicing/internal/presentation/rest"
	"github.com/bibbank/loan-servicing/pkg/auth"
	pkgkafka "github.com/bibbank/loan-servicing/pkg/kafka"
	"github.com/bibbank/loan-servicing/pkg/observability"
	pkgpostgres "github.com/bibbank/loan-servicing/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  "info",
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting loan-servicing",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Initialize tracing.
	shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdown(ctx) }() //nolint:errcheck // best-effort tracer shutdown
	}

	// Metrics endpoint.
	_, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(pgCfg.DSN(), "file://migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Wire infrastructure adapters.
	rules := valueobject.DefaultRuleTable()
	loanRepo := pgRepo.NewLoanRepo(pool, rules)
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
	})
	defer kafkaProducer.Close()
	publisher := kafka.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.Topic, logger)
	sysClock := clock.NewSystemClock(cfg.BusinessDateOffsetHours)
	replayer := service.NewReplayer(rules)
	locks := usecase.NewLoanLocker()

	// Wire use cases.
	createLoanUC := usecase.NewCreateLoanUseCase(loanRepo, publisher, sysClock, rules)
	getLoanUC := usecase.NewGetLoanUseCase(loanRepo)
	recordUC := usecase.NewRecordTransactionUseCase(loanRepo, publisher, replayer, sysClock, locks)
	reverseUC := usecase.NewReverseTransactionUseCase(loanRepo, publisher, replayer, sysClock, locks)
	adjustUC := usecase.NewAdjustTransactionUseCase(loanRepo, publisher, replayer, sysClock, locks)
	chargeUC := usecase.NewApplyChargeUseCase(loanRepo, publisher, replayer, sysClock, locks)

	// JWT service (validation-only: public key preferred, secret as fallback).
	jwtCfg := auth.JWTConfig{
		Issuer: "bib-gateway",
	}
	switch {
	case os.Getenv("JWT_PUBLIC_KEY") != "":
		jwtCfg.PublicKeyPEM = os.Getenv("JWT_PUBLIC_KEY")
	case os.Getenv("JWT_PUBLIC_KEY_FILE") != "":
		keyData, loadErr := auth.LoadKeyFromFile(os.Getenv("JWT_PUBLIC_KEY_FILE"))
		if loadErr != nil {
			logger.Error("failed to load JWT public key file", "error", loadErr)
			os.Exit(1)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	default:
		jwtSecret := os.Getenv("JWT_SECRET")
		if jwtSecret == "" {
			jwtSecret = "test-e2e-secret" // Match gateway default for E2E tests
		}
		jwtCfg.Secret = jwtSecret
	}
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// gRPC server.
	handler := grpcPresentation.NewServicingHandler(createLoanUC, getLoanUC, recordUC, reverseUC, adjustUC, chargeUC)
	grpcServer := grpcPresentation.NewServer(handler, logger, jwtSvc)

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	healthHandler := rest.NewHealthHandler(logger, pool)
	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("loan-servicing stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
