package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/triage-api/internal/config"
	"github.com/jwalitptl/triage-api/internal/repository/postgres"
	cleanup "github.com/jwalitptl/triage-api/internal/worker"
	"github.com/jwalitptl/triage-api/pkg/logger"
	"github.com/jwalitptl/triage-api/pkg/messaging/redis"
	"github.com/jwalitptl/triage-api/pkg/metrics"
	"github.com/jwalitptl/triage-api/pkg/worker"
)

func setupHealthCheck(appLogger *logger.Logger, breaker breakerState) *http.Server {
	srv := &http.Server{Addr: healthAddr, Handler: newHealthMux(breaker), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(err, "Health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	appLogger := logger.NewLogger(cfg.Log.ToLoggerConfig())
	log.Logger = *appLogger.Zerolog()

	workerID := generateWorkerID()
	appLogger = appLogger.With("worker_id", workerID)

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis broker
	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		appLogger.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	m := metrics.NewMetrics("triage", "worker")
	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		appLogger.With("component", "outbox_processor"),
		m,
	)
	cleaner := cleanup.NewOutboxCleanupWorker(
		outboxRepo,
		cfg.Outbox.RetentionDays,
		cfg.Outbox.CleanupInterval,
		appLogger.With("component", "outbox_cleanup"),
		m,
	)

	healthSrv := setupHealthCheck(appLogger, broker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleaner.Start(ctx)
	}()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "Health check server shutdown failed")
	}
}

func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d", hostname, time.Now().UnixNano())
}
