package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sungwon/message-gateway/internal/channel"
	"github.com/sungwon/message-gateway/internal/logger"
)

// sendSMSRequest is the body of POST /v1/messages/sms.
type sendSMSRequest struct {
	To       string            `json:"to"`
	From     string            `json:"from"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata"`
}

// sendMMSRequest is the body of POST /v1/messages/mms.
type sendMMSRequest struct {
	To        string            `json:"to"`
	From      string            `json:"from"`
	Text      string            `json:"text"`
	MediaURLs []string          `json:"media_urls"`
	Metadata  map[string]string `json:"metadata"`
}

// SendSMSHandler handles POST /v1/messages/sms. Provider-side failures are
// part of the response payload, not the HTTP status: a send attempt is an
// expected outcome either way.
func SendSMSHandler(router *channel.SMSRouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req sendSMSRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var problems []string
		if req.To == "" {
			problems = append(problems, "to is required")
		}
		if req.Body == "" {
			problems = append(problems, "body is required")
		}
		if len(problems) > 0 {
			respondValidationErrors(w, problems)
			return
		}

		resp := router.SendSMS(r.Context(), req.To, req.From, req.Body, req.Metadata)
		if !resp.Success {
			log.Warn().Str("provider", resp.Provider).Str("error", resp.Error).Msg("sms send failed")
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// SendMMSHandler handles POST /v1/messages/mms.
func SendMMSHandler(router *channel.SMSRouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req sendMMSRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var problems []string
		if req.To == "" {
			problems = append(problems, "to is required")
		}
		if len(req.MediaURLs) == 0 {
			problems = append(problems, "media_urls is required")
		}
		if len(problems) > 0 {
			respondValidationErrors(w, problems)
			return
		}

		resp := router.SendMMS(r.Context(), req.To, req.From, req.Text, req.MediaURLs, req.Metadata)
		if !resp.Success {
			log.Warn().Str("provider", resp.Provider).Str("error", resp.Error).Msg("mms send failed")
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// GetMessageStatusHandler handles GET /v1/messages/{id}.
func GetMessageStatusHandler(router *channel.SMSRouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			respondError(w, http.StatusBadRequest, "message id is required")
			return
		}
		respondJSON(w, http.StatusOK, router.GetStatus(r.Context(), id))
	}
}
