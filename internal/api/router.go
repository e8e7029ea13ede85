package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sungwon/message-gateway/internal/auth"
	"github.com/sungwon/message-gateway/internal/channel"
	"github.com/sungwon/message-gateway/internal/provider"
)

// RouterConfig carries the dependencies for the gateway router.
type RouterConfig struct {
	Registry      *provider.Registry
	SMSRouter     *channel.SMSRouter
	HealthChecker *provider.HealthChecker
	Gate          *auth.Gate
	Log           zerolog.Logger
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers
// configured. The auth gate wraps everything; its own allow-list exempts
// the health and metrics endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	r.Use(RecoverMiddleware(cfg.Log))
	r.Use(cfg.Gate.Middleware())

	// Unauthenticated surface (allow-listed in the gate)
	r.Get("/health", HealthHandler())
	r.Get("/health/providers", ProviderHealthHandler(cfg.HealthChecker))
	r.Handle("/metrics", promhttp.Handler())

	// Internal API (behind the gate)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages/sms", SendSMSHandler(cfg.SMSRouter))
		r.Post("/messages/mms", SendMMSHandler(cfg.SMSRouter))
		r.Get("/messages/{id}", GetMessageStatusHandler(cfg.SMSRouter))

		r.Get("/providers", ListProvidersHandler(cfg.Registry, cfg.HealthChecker))
		r.Post("/webhooks/{provider}", WebhookHandler(cfg.Registry))
	})

	return r
}
