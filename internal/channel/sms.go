// Package channel routes outbound send requests onto a delivery path:
// a delegated per-channel microservice or direct provider dispatch through
// the adapter registry. Every attempt is wrapped with telemetry and the
// router always answers with a Response value, never a hard failure, so
// callers get a uniform success/failure contract for provider-side
// problems.
package channel

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sungwon/message-gateway/internal/metrics"
	"github.com/sungwon/message-gateway/internal/provider"
)

// Response is the channel-level outcome of one operation.
type Response struct {
	Success  bool           `json:"success"`
	SMSID    string         `json:"sms_id,omitempty"`
	Status   string         `json:"status,omitempty"`
	Provider string         `json:"provider"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	// Retryable is set on transient failures: the same request may
	// succeed later. A failure without it is permanent.
	Retryable bool `json:"retryable,omitempty"`
}

// SMSRouterConfig holds the runtime flags for the SMS delivery path.
type SMSRouterConfig struct {
	// UseMicroservice prefers the delegated SMS microservice path.
	UseMicroservice bool
	// FallbackEnabled defers to the direct path when the microservice
	// path cannot serve. Defaults to true in configuration.
	FallbackEnabled bool
	// DefaultProvider names the registry adapter used by the direct path.
	// Empty means no direct transport is wired and the direct path
	// reports the legacy service as unavailable.
	DefaultProvider string
}

// SMSRouter selects a delivery path per send request and normalizes the
// outcome.
type SMSRouter struct {
	cfg      SMSRouterConfig
	registry *provider.Registry
	tracker  metrics.Tracker
	log      zerolog.Logger
}

// NewSMSRouter creates the SMS channel router.
func NewSMSRouter(cfg SMSRouterConfig, registry *provider.Registry, tracker metrics.Tracker, log zerolog.Logger) *SMSRouter {
	return &SMSRouter{
		cfg:      cfg,
		registry: registry,
		tracker:  tracker,
		log:      log.With().Str("service", "sms").Logger(),
	}
}

// SendSMS routes a text message send.
func (r *SMSRouter) SendSMS(ctx context.Context, to, from, body string, metadata map[string]string) Response {
	return r.track("send_sms", func() Response {
		if r.cfg.UseMicroservice {
			return r.viaMicroservice(func() Response {
				return r.sendDirect(ctx, to, from, body, metadata)
			})
		}
		return r.sendDirect(ctx, to, from, body, metadata)
	})
}

// SendMMS routes a media message send. Adapters without MMS support answer
// through their capability default, which the router passes along
// unchanged.
func (r *SMSRouter) SendMMS(ctx context.Context, to, from, text string, mediaURLs []string, metadata map[string]string) Response {
	return r.track("send_mms", func() Response {
		if r.cfg.UseMicroservice {
			return r.viaMicroservice(func() Response {
				return r.sendMMSDirect(ctx, to, from, text, mediaURLs, metadata)
			})
		}
		return r.sendMMSDirect(ctx, to, from, text, mediaURLs, metadata)
	})
}

// GetStatus routes a message status lookup. No direct status backend is
// wired in this core; the direct path reports the legacy service as
// unavailable.
func (r *SMSRouter) GetStatus(ctx context.Context, smsID string) Response {
	return r.track("get_sms_status", func() Response {
		if r.cfg.UseMicroservice {
			return r.viaMicroservice(r.legacyUnavailable)
		}
		return r.legacyUnavailable()
	})
}

// viaMicroservice reflects the intentionally incomplete microservice
// integration: with fallback enabled the router defers straight to the
// direct path; with fallback disabled it reports the microservice as
// unavailable.
func (r *SMSRouter) viaMicroservice(direct func() Response) Response {
	if r.cfg.FallbackEnabled {
		r.log.Warn().Msg("microservice unavailable, falling back to direct path")
		return direct()
	}
	return Response{
		Success:   false,
		Provider:  "microservice",
		Error:     "SMS service temporarily unavailable",
		Retryable: true,
	}
}

func (r *SMSRouter) sendDirect(ctx context.Context, to, from, body string, metadata map[string]string) Response {
	adapter, resp, ok := r.resolveDirect()
	if !ok {
		return resp
	}
	return toResponse(adapter.Name(), adapter.SendSMS(ctx, to, from, body, metadata))
}

func (r *SMSRouter) sendMMSDirect(ctx context.Context, to, from, text string, mediaURLs []string, metadata map[string]string) Response {
	adapter, resp, ok := r.resolveDirect()
	if !ok {
		return resp
	}
	return toResponse(adapter.Name(), adapter.SendMMS(ctx, to, from, text, mediaURLs, metadata))
}

// resolveDirect looks up the configured direct-path adapter. A missing
// configuration degrades to the legacy-unavailable answer; an unknown
// provider name is a configuration error reported in the response, never
// silently substituted.
func (r *SMSRouter) resolveDirect() (provider.Adapter, Response, bool) {
	if r.cfg.DefaultProvider == "" {
		return nil, r.legacyUnavailable(), false
	}

	adapter, err := r.registry.Get(r.cfg.DefaultProvider)
	if err != nil {
		r.log.Error().Err(err).Str("provider", r.cfg.DefaultProvider).Msg("direct path provider not registered")
		return nil, Response{
			Success:  false,
			Provider: r.cfg.DefaultProvider,
			Error:    err.Error(),
		}, false
	}
	return adapter, Response{}, true
}

func (r *SMSRouter) legacyUnavailable() Response {
	r.log.Warn().Msg("legacy SMS service not available")
	return Response{
		Success:   false,
		Provider:  "legacy",
		Error:     "legacy SMS service not available",
		Retryable: true,
	}
}

// track measures the wall-clock duration of the whole routing decision and
// emits one adapter.request event for it.
func (r *SMSRouter) track(operation string, fn func() Response) Response {
	start := time.Now()
	resp := fn()
	duration := time.Since(start)

	r.tracker.Track("adapter.request", map[string]any{
		"service":     "sms",
		"operation":   operation,
		"provider":    resp.Provider,
		"success":     resp.Success,
		"duration_ms": float64(duration) / float64(time.Millisecond),
	})
	return resp
}

// toResponse flattens an adapter SendResult into the channel response.
func toResponse(providerName string, result provider.SendResult) Response {
	return Response{
		Success:   result.Success,
		SMSID:     result.ProviderMessageID,
		Status:    string(result.Status),
		Provider:  providerName,
		Data:      result.RawResponse,
		Error:     result.ErrorMessage,
		Retryable: !result.Success && !result.Permanent,
	}
}
