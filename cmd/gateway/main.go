package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sungwon/message-gateway/internal/api"
	"github.com/sungwon/message-gateway/internal/auth"
	"github.com/sungwon/message-gateway/internal/channel"
	"github.com/sungwon/message-gateway/internal/config"
	"github.com/sungwon/message-gateway/internal/logger"
	"github.com/sungwon/message-gateway/internal/metrics"
	"github.com/sungwon/message-gateway/internal/provider"
	"github.com/sungwon/message-gateway/internal/ratelimit"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewFromConfig(logger.LoggingConfig{
		Level:     cfg.Logging.Level,
		Output:    cfg.Logging.Output,
		FilePath:  cfg.Logging.FilePath,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	log.Info().Msg("starting gateway")

	if cfg.Auth.InternalSecret == "" {
		log.Warn().Msg("internal secret not configured; running in insecure mode")
	}

	ctx := context.Background()

	// Build the adapter registry from configuration.
	registry := provider.NewRegistry()
	httpClient := provider.NewHTTPClient(30 * time.Second)
	for _, pc := range cfg.Providers {
		adapter, err := provider.NewAdapter(pc, httpClient, log)
		if err != nil {
			log.Fatal().Err(err).Str("type", pc.Type).Msg("failed to create provider adapter")
		}
		if err := adapter.Initialize(ctx); err != nil {
			log.Fatal().Err(err).Str("provider", adapter.Name()).Msg("failed to initialize provider adapter")
		}
		registry.Register(adapter)
	}
	defer registry.CloseAll(ctx)
	log.Info().Strs("providers", registry.List()).Msg("provider registry ready")

	// Rate governor over the shared counter store.
	var governor *ratelimit.Governor
	if cfg.RateLimit.Enabled && cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		governor = ratelimit.NewGovernor(ratelimit.NewRedisStore(redisClient), cfg.RateLimit.FailOpen, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("rate governor enabled")
	} else {
		log.Warn().Msg("rate governor disabled; no counter store configured")
	}

	gate := auth.NewGate(auth.GateConfig{
		InternalSecret: cfg.Auth.InternalSecret,
	}, governor, log)

	// Channel router for the SMS delivery path.
	smsRouter := channel.NewSMSRouter(channel.SMSRouterConfig{
		UseMicroservice: cfg.Channels.SMS.UseMicroservice,
		FallbackEnabled: cfg.Channels.SMS.FallbackToLegacy,
		DefaultProvider: cfg.Channels.SMS.DefaultProvider,
	}, registry, metrics.NewPrometheusTracker(), log)

	// Background provider health checks.
	checker := provider.NewHealthChecker(registry)
	checker.Start()
	defer checker.Stop()

	router := api.NewRouter(api.RouterConfig{
		Registry:      registry,
		SMSRouter:     smsRouter,
		HealthChecker: checker,
		Gate:          gate,
		Log:           log,
	})

	// Configure HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down gateway")

	// Graceful shutdown with 30-second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
