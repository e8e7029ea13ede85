package api

import (
	"net/http"

	"github.com/sungwon/message-gateway/internal/provider"
)

// HealthHandler handles GET /health.
// Always returns 200 OK with {"status":"ok"}.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ProviderHealthHandler handles GET /health/providers.
// Returns the latest health snapshot for every monitored adapter.
func ProviderHealthHandler(checker *provider.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type status struct {
			Healthy             bool   `json:"healthy"`
			LastCheck           string `json:"last_check,omitempty"`
			ConsecutiveFailures int    `json:"consecutive_failures"`
		}

		statuses := make(map[string]status)
		if checker != nil {
			for name, s := range checker.GetAllStatuses() {
				entry := status{
					Healthy:             s.Healthy,
					ConsecutiveFailures: s.ConsecutiveFailures,
				}
				if !s.LastCheck.IsZero() {
					entry.LastCheck = s.LastCheck.UTC().Format("2006-01-02T15:04:05Z07:00")
				}
				statuses[name] = entry
			}
		}

		respondJSON(w, http.StatusOK, map[string]any{"providers": statuses})
	}
}
