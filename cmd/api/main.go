// Package main provides the entrypoint for the PaperTrail API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrail/papertrail-api/internal/anthropic"
	"github.com/papertrail/papertrail-api/internal/api"
	"github.com/papertrail/papertrail-api/internal/api/middleware"
	"github.com/papertrail/papertrail-api/internal/database"
	"github.com/papertrail/papertrail-api/internal/device"
	"github.com/papertrail/papertrail-api/internal/events"
	"github.com/papertrail/papertrail-api/internal/quota"
	"github.com/papertrail/papertrail-api/internal/telemetry"
	"github.com/papertrail/papertrail-api/internal/usage"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "papertrail-api"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting PaperTrail API")

	port := os.Getenv("PORT")
	if port == "" {
		port = "3334"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Connect to database and ensure the gateway schema exists
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database ready")

	// Device registry
	deviceService := device.NewService(device.NewPostgresRepository(pool))
	log.Info().Msg("device service initialized")

	// Usage ledger + quota policy
	freeTierLimit := quota.DefaultFreeTierLimit
	if v := os.Getenv("FREE_TIER_LIMIT"); v != "" {
		if parsed, parseErr := strconv.Atoi(v); parseErr == nil && parsed > 0 {
			freeTierLimit = parsed
		}
	}
	quotaService := quota.NewService(quota.ServiceConfig{
		Ledger:        usage.NewPostgresLedger(pool),
		FreeTierLimit: freeTierLimit,
	})
	log.Info().Int("free_tier_limit", freeTierLimit).Msg("quota service initialized")

	// Rate limiter configuration
	rateLimit := middleware.DefaultRateLimit
	if v := os.Getenv("RATE_LIMIT_PER_MIN"); v != "" {
		if parsed, parseErr := strconv.Atoi(v); parseErr == nil && parsed > 0 {
			rateLimit.RequestLimit = parsed
		}
	}

	// Collaborator client
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - analyze and draft endpoints will fail")
	}
	collaborator := anthropic.NewClient(anthropic.ClientConfig{
		APIKey: apiKey,
		Logger: log,
	})

	// Optional usage-event publisher for the billing/analytics pipeline
	var publisher *events.Publisher
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		topic := os.Getenv("PUBSUB_TOPIC")
		if topic == "" {
			topic = "papertrail-usage-events"
		}
		publisher, err = events.NewPublisher(ctx, events.Config{
			ProjectID: projectID,
			TopicName: topic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize event publisher")
		}
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close event publisher")
			}
		}()
		log.Info().Str("topic", topic).Msg("usage event publisher initialized")
	}

	routerCfg := api.RouterConfig{
		Version:       Version,
		Environment:   env,
		Logger:        log,
		ServiceName:   serviceName,
		Metrics:       metrics,
		DeviceService: deviceService,
		QuotaService:  quotaService,
		Collaborator:  collaborator,
		RateLimit:     rateLimit,
	}
	if publisher != nil {
		routerCfg.Publisher = publisher
	}
	router := api.NewRouter(routerCfg)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
