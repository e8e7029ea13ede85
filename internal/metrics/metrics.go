// Package metrics is the telemetry sink for the gateway. The channel
// router emits one adapter.request event per send attempt; this package
// maps those events onto prometheus collectors.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tracker receives telemetry events. Implementations must be safe for
// concurrent use.
type Tracker interface {
	Track(event string, fields map[string]any)
}

// Adapter request metrics
var (
	AdapterRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_requests_total",
			Help: "Total number of adapter requests",
		},
		[]string{"service", "operation", "provider", "success"},
	)

	AdapterRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adapter_request_duration_seconds",
			Help:    "Duration of adapter requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation", "provider"},
	)
)

// Auth gate metrics
var (
	AuthRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_auth_rejections_total",
			Help: "Total number of requests rejected by the auth gate",
		},
	)

	RateLimitDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_rate_limit_denials_total",
			Help: "Total number of requests denied by the rate governor",
		},
		[]string{"tier"},
	)
)

// PrometheusTracker implements Tracker on top of the adapter request
// collectors. Events other than adapter.request are ignored.
type PrometheusTracker struct{}

// NewPrometheusTracker creates a PrometheusTracker.
func NewPrometheusTracker() *PrometheusTracker {
	return &PrometheusTracker{}
}

// Track records an adapter.request event. Expected fields: service,
// operation, provider, success, duration_ms.
func (p *PrometheusTracker) Track(event string, fields map[string]any) {
	if event != "adapter.request" {
		return
	}

	service := stringField(fields, "service")
	operation := stringField(fields, "operation")
	provider := stringField(fields, "provider")

	success := "false"
	if b, ok := fields["success"].(bool); ok && b {
		success = "true"
	}

	AdapterRequestsTotal.WithLabelValues(service, operation, provider, success).Inc()

	if ms, ok := fields["duration_ms"].(float64); ok {
		AdapterRequestDuration.WithLabelValues(service, operation, provider).Observe(ms / 1000)
	}
}

// NopTracker discards all events.
type NopTracker struct{}

func (NopTracker) Track(string, map[string]any) {}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
