package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const vonageDefaultEndpoint = "https://rest.nexmo.com"

// VonageConfig holds the credentials for a Vonage adapter.
type VonageConfig struct {
	APIKey          string
	APISecret       string
	SignatureSecret string
	Endpoint        string
}

// Vonage is the adapter for the Vonage (Nexmo) SMS API. It does not
// support MMS; MMS sends fall through to the BaseAdapter default.
type Vonage struct {
	BaseAdapter

	cfg     VonageConfig
	baseURL string
	client  HTTPClient
}

// NewVonage creates a Vonage adapter from the given configuration.
func NewVonage(cfg VonageConfig, client HTTPClient, log zerolog.Logger) *Vonage {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = vonageDefaultEndpoint
	}
	return &Vonage{
		BaseAdapter: NewBaseAdapter("vonage", log),
		cfg:         cfg,
		baseURL:     endpoint,
		client:      client,
	}
}

func (v *Vonage) SupportsWhatsApp() bool { return true }

// SendSMS sends a text message through the Vonage SMS API.
func (v *Vonage) SendSMS(ctx context.Context, to, from, body string, metadata map[string]string) SendResult {
	msgType := "text"
	for _, r := range body {
		if r > 127 {
			msgType = "unicode"
			break
		}
	}

	form := url.Values{}
	form.Set("api_key", v.cfg.APIKey)
	form.Set("api_secret", v.cfg.APISecret)
	form.Set("to", strings.TrimPrefix(to, "+"))
	form.Set("from", strings.TrimPrefix(from, "+"))
	form.Set("text", body)
	form.Set("type", msgType)
	if cb := metadata["webhook_url"]; cb != "" {
		form.Set("callback", cb)
	}

	resp, err := v.client.Do(ctx, &HTTPRequest{
		Method: "POST",
		URL:    v.baseURL + "/sms/json",
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		v.Log.Error().Err(err).Msg("vonage send failed")
		return SendResult{
			Success:      false,
			Status:       StatusFailed,
			ErrorMessage: err.Error(),
			Segments:     1,
		}
	}

	var data struct {
		Messages []struct {
			Status       string `json:"status"`
			MessageID    string `json:"message-id"`
			ErrorText    string `json:"error-text"`
			MessagePrice string `json:"message-price"`
			MessageCount string `json:"message-count"`
		} `json:"messages"`
	}
	raw := map[string]any{}
	_ = json.Unmarshal(resp.Body, &raw)
	if err := json.Unmarshal(resp.Body, &data); err != nil || len(data.Messages) == 0 {
		return SendResult{
			Success:      false,
			Status:       StatusFailed,
			ErrorMessage: "Unknown error",
			RawResponse:  raw,
			Segments:     1,
		}
	}

	msg := data.Messages[0]
	if msg.Status == "0" {
		cost, _ := strconv.ParseFloat(msg.MessagePrice, 64)
		segments, err := strconv.Atoi(msg.MessageCount)
		if err != nil || segments < 1 {
			segments = 1
		}
		return SendResult{
			Success:           true,
			ProviderMessageID: msg.MessageID,
			Status:            StatusSent,
			RawResponse:       raw,
			Cost:              cost,
			Segments:          segments,
		}
	}

	errText := msg.ErrorText
	if errText == "" {
		errText = "Unknown error"
	}
	return SendResult{
		Success:      false,
		Status:       StatusFailed,
		ErrorCode:    msg.Status,
		ErrorMessage: errText,
		Permanent:    vonageStatusPermanent(msg.Status),
		RawResponse:  raw,
		Segments:     1,
	}
}

// vonageStatusPermanent classifies a non-zero send status. Throttling (1)
// and platform errors (5) are retryable; the rest reflect the request or
// the account and will fail again unchanged.
func vonageStatusPermanent(status string) bool {
	switch status {
	case "1", "5":
		return false
	default:
		return true
	}
}

// ValidateWebhook checks the HMAC-SHA256 signature carried in the
// Authorization header when a signature secret is configured. With no
// secret configured every webhook is accepted.
func (v *Vonage) ValidateWebhook(headers map[string]string, body []byte) bool {
	if v.cfg.SignatureSecret == "" {
		return true
	}

	signature := strings.TrimPrefix(headers["Authorization"], "Bearer ")

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		if k != "sig" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}

	mac := hmac.New(sha256.New, []byte(v.cfg.SignatureSecret))
	mac.Write([]byte(strings.Join(parts, "&")))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}

// ParseWebhook parses a Vonage delivery receipt (JSON).
func (v *Vonage) ParseWebhook(body []byte) (WebhookEvent, error) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return WebhookEvent{}, fmt.Errorf("vonage: parse delivery receipt: %w", err)
	}

	msgID, _ := data["messageId"].(string)
	if msgID == "" {
		msgID, _ = data["message-id"].(string)
	}
	status, _ := data["status"].(string)
	errCode, _ := data["err-code"].(string)
	timestamp, _ := data["message-timestamp"].(float64)

	return WebhookEvent{
		ProviderMessageID: msgID,
		Status:            v.mapStatus(status),
		Timestamp:         timestamp,
		ErrorCode:         errCode,
		RawPayload:        data,
	}, nil
}

// HealthCheck verifies Vonage API reachability via the balance endpoint.
func (v *Vonage) HealthCheck(ctx context.Context) bool {
	query := url.Values{}
	query.Set("api_key", v.cfg.APIKey)
	query.Set("api_secret", v.cfg.APISecret)

	resp, err := v.client.Do(ctx, &HTTPRequest{
		Method: "GET",
		URL:    v.baseURL + "/account/get-balance?" + query.Encode(),
	})
	if err != nil {
		return false
	}
	return resp.StatusCode == 200
}

// mapStatus maps a Vonage DLR status to the internal status.
func (v *Vonage) mapStatus(vonageStatus string) MessageStatus {
	switch strings.ToLower(vonageStatus) {
	case "submitted", "buffered":
		return StatusPending
	case "accepted":
		return StatusSent
	case "delivered":
		return StatusDelivered
	case "expired", "failed":
		return StatusFailed
	case "rejected":
		return StatusRejected
	default:
		return StatusPending
	}
}
