package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sungwon/message-gateway/internal/logger"
	"github.com/sungwon/message-gateway/internal/provider"
)

// webhookEventResponse is the normalized delivery event returned to the
// webhook caller and handed to downstream status-update consumers.
type webhookEventResponse struct {
	ProviderMessageID string  `json:"provider_message_id"`
	Status            string  `json:"status"`
	Timestamp         float64 `json:"timestamp,omitempty"`
	ErrorCode         string  `json:"error_code,omitempty"`
	ErrorMessage      string  `json:"error_message,omitempty"`
}

// WebhookHandler handles POST /v1/webhooks/{provider}: the owning adapter
// validates the signature and parses the raw body into the normalized
// delivery event shape.
func WebhookHandler(registry *provider.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		name := chi.URLParam(r, "provider")

		adapter, err := registry.Get(name)
		if err != nil {
			var unknown *provider.ErrUnknownProvider
			if errors.As(err, &unknown) {
				respondError(w, http.StatusNotFound, err.Error())
				return
			}
			respondError(w, http.StatusInternalServerError, "provider lookup failed")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		headers := make(map[string]string, len(r.Header))
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}

		if !adapter.ValidateWebhook(headers, body) {
			log.Warn().Str("provider", adapter.Name()).Msg("webhook signature validation failed")
			respondError(w, http.StatusUnauthorized, "invalid webhook signature")
			return
		}

		event, err := adapter.ParseWebhook(body)
		if err != nil {
			log.Warn().Err(err).Str("provider", adapter.Name()).Msg("webhook parse failed")
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		respondJSON(w, http.StatusOK, webhookEventResponse{
			ProviderMessageID: event.ProviderMessageID,
			Status:            string(event.Status),
			Timestamp:         event.Timestamp,
			ErrorCode:         event.ErrorCode,
			ErrorMessage:      event.ErrorMessage,
		})
	}
}
