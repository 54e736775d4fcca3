package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/triage-api/internal/config"
	"github.com/jwalitptl/triage-api/internal/email"
	patientHandler "github.com/jwalitptl/triage-api/internal/handler/patient"
	resourceHandler "github.com/jwalitptl/triage-api/internal/handler/resource"
	"github.com/jwalitptl/triage-api/internal/middleware"
	"github.com/jwalitptl/triage-api/internal/repository/postgres"
	"github.com/jwalitptl/triage-api/internal/router"
	eventService "github.com/jwalitptl/triage-api/internal/service/event"
	patientService "github.com/jwalitptl/triage-api/internal/service/patient"
	resourceService "github.com/jwalitptl/triage-api/internal/service/resource"
	"github.com/jwalitptl/triage-api/pkg/logger"
	"github.com/jwalitptl/triage-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(cfg.Log.ToLoggerConfig())
	log.Logger = *appLogger.Zerolog()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	m := metrics.NewMetrics("triage", "api")

	// Initialize repositories
	patientRepo := postgres.NewPatientRepository(db)
	resourceRepo := postgres.NewResourceRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Initialize services
	eventSvc := eventService.NewService(outboxRepo)
	notifier := email.NewService(cfg.SMTP.ToEmailConfig())
	resourceSvc := resourceService.NewService(
		resourceRepo,
		eventSvc,
		notifier,
		cfg.Triage.ResourceCacheTTL,
		appLogger.With("component", "resource_service"),
		m,
	)
	patientSvc := patientService.NewService(
		patientRepo,
		resourceSvc,
		eventSvc,
		nil,
		appLogger.With("component", "patient_service"),
		m,
	)

	if cfg.Triage.SeedResources {
		if _, err := resourceSvc.SeedDefaults(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to seed resources")
		}
	}

	// Setup router
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowedOrigins
	cors.AllowMethods = cfg.CORS.AllowedMethods
	cors.AllowHeaders = cfg.CORS.AllowedHeaders

	r := router.NewRouter(
		router.RouterConfig{
			Mode:             cfg.Server.Mode,
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       cors,
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			RequestTimeout:   cfg.Server.WriteTimeout,
		},
		m,
		prometheus.DefaultGatherer,
		db,
		patientHandler.NewHandler(patientSvc),
		resourceHandler.NewHandler(resourceSvc),
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
