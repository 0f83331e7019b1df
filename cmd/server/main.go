package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spbu-ds-practicum-2025/balance-service/internal/config"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/db"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/domain"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/events"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/health"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/httpapi"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/logging"
	"github.com/spbu-ds-practicum-2025/balance-service/internal/metrics"
)

const (
	healthCheckInterval = 10 * time.Second
	shutdownTimeout     = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("balance-service stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("balance-service stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := db.Migrate(cfg.Database.URL); err != nil {
			return err
		}
	}

	// Initialize database connection pool
	pool, err := db.NewPool(ctx, cfg.Database.URL, db.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("database connection pool initialized", "max_conns", cfg.Database.MaxConns)

	// Optional event publisher
	var publisher domain.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	} else {
		slog.Info("RABBITMQ_URL not set, deposit events disabled")
	}

	// Create repositories and domain services
	accountRepo := db.NewAccountRepository(pool.Pool)
	txManager := db.NewTransactionManager(pool.Pool)
	balanceService := domain.NewBalanceService(
		domain.NewAuthenticator(accountRepo),
		domain.NewLedger(accountRepo, txManager, publisher, cfg.MaxDeposit),
		txManager,
	)
	slog.Info("domain services initialized", "max_deposit", cfg.MaxDeposit.StringFixed(domain.AmountScale))

	m := metrics.New()
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(balanceService, m), m.Handler(), cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5*time.Second + cfg.RequestTimeout,
		WriteTimeout:      10*time.Second + cfg.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	checker := health.NewChecker(pool, healthCheckInterval)
	grpcServer := health.NewGRPCServer(checker)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		checker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		slog.Info("gRPC health server starting", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		slog.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case runErr = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	wg.Wait()

	return runErr
}
