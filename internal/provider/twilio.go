package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const twilioDefaultEndpoint = "https://api.twilio.com/2010-04-01"

// TwilioConfig holds the credentials for a Twilio adapter.
type TwilioConfig struct {
	AccountSID          string
	AuthToken           string
	MessagingServiceSID string
	Endpoint            string
}

// Twilio is the adapter for the Twilio SMS/MMS API. It supports MMS and
// WhatsApp, validates webhook signatures, and parses status callbacks.
type Twilio struct {
	BaseAdapter

	cfg     TwilioConfig
	baseURL string
	client  HTTPClient
}

// NewTwilio creates a Twilio adapter from the given configuration.
func NewTwilio(cfg TwilioConfig, client HTTPClient, log zerolog.Logger) *Twilio {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = twilioDefaultEndpoint
	}
	return &Twilio{
		BaseAdapter: NewBaseAdapter("twilio", log),
		cfg:         cfg,
		baseURL:     endpoint + "/Accounts/" + cfg.AccountSID,
		client:      client,
	}
}

func (t *Twilio) SupportsMMS() bool      { return true }
func (t *Twilio) SupportsWhatsApp() bool { return true }

// SendSMS sends a text message through the Twilio Messages API.
func (t *Twilio) SendSMS(ctx context.Context, to, from, body string, metadata map[string]string) SendResult {
	form := url.Values{}
	form.Set("To", to)
	form.Set("Body", body)
	t.setSender(form, from)
	if cb := metadata["webhook_url"]; cb != "" {
		form.Set("StatusCallback", cb)
	}
	return t.postMessage(ctx, form)
}

// SendMMS sends a media message through the Twilio Messages API.
func (t *Twilio) SendMMS(ctx context.Context, to, from, text string, mediaURLs []string, metadata map[string]string) SendResult {
	form := url.Values{}
	form.Set("To", to)
	t.setSender(form, from)
	if text != "" {
		form.Set("Body", text)
	}
	// Twilio accepts repeated MediaUrl parameters.
	for _, u := range mediaURLs {
		form.Add("MediaUrl", u)
	}
	if cb := metadata["webhook_url"]; cb != "" {
		form.Set("StatusCallback", cb)
	}
	return t.postMessage(ctx, form)
}

// setSender prefers a messaging service over an explicit from number.
func (t *Twilio) setSender(form url.Values, from string) {
	if t.cfg.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", t.cfg.MessagingServiceSID)
	} else {
		form.Set("From", from)
	}
}

func (t *Twilio) postMessage(ctx context.Context, form url.Values) SendResult {
	resp, err := t.client.Do(ctx, &HTTPRequest{
		Method: "POST",
		URL:    t.baseURL + "/Messages.json",
		Headers: map[string]string{
			"Authorization": "Basic " + t.basicAuth(),
			"Content-Type":  "application/x-www-form-urlencoded",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		t.Log.Error().Err(err).Msg("twilio send failed")
		return SendResult{
			Success:      false,
			Status:       StatusFailed,
			ErrorMessage: err.Error(),
			Segments:     1,
		}
	}

	var data map[string]any
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		data = map[string]any{"body": string(resp.Body)}
	}

	if resp.StatusCode == 201 {
		segments := 1
		if n, ok := data["num_segments"].(string); ok {
			if parsed, err := strconv.Atoi(n); err == nil {
				segments = parsed
			}
		}
		sid, _ := data["sid"].(string)
		status, _ := data["status"].(string)
		return SendResult{
			Success:           true,
			ProviderMessageID: sid,
			Status:            t.mapStatus(status),
			RawResponse:       data,
			Segments:          segments,
		}
	}

	pe := ClassifyHTTPError("twilio", resp.StatusCode, string(resp.Body))
	code := strconv.Itoa(resp.StatusCode)
	if c, ok := data["code"].(float64); ok {
		code = strconv.Itoa(int(c))
	}
	message := "Unknown error"
	if m, ok := data["message"].(string); ok {
		message = m
	} else if pe != nil {
		message = pe.Message
	}
	return SendResult{
		Success:      false,
		Status:       StatusFailed,
		ErrorCode:    code,
		ErrorMessage: message,
		Permanent:    pe != nil && pe.Permanent,
		RawResponse:  data,
		Segments:     1,
	}
}

// ValidateWebhook verifies the X-Twilio-Signature header: HMAC-SHA1 over
// the original request URL concatenated with the sorted form parameters,
// base64 encoded. The gateway forwards the original URL in X-Original-Url.
func (t *Twilio) ValidateWebhook(headers map[string]string, body []byte) bool {
	signature := headers["X-Twilio-Signature"]
	originalURL := headers["X-Original-Url"]

	params, err := url.ParseQuery(string(body))
	if err != nil {
		return false
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(originalURL)
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params.Get(k))
	}

	mac := hmac.New(sha1.New, []byte(t.cfg.AuthToken))
	mac.Write([]byte(sb.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// ParseWebhook parses a Twilio status callback (form encoded).
func (t *Twilio) ParseWebhook(body []byte) (WebhookEvent, error) {
	params, err := url.ParseQuery(string(body))
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("twilio: parse status callback: %w", err)
	}

	raw := make(map[string]any, len(params))
	for k := range params {
		raw[k] = params.Get(k)
	}

	return WebhookEvent{
		ProviderMessageID: params.Get("MessageSid"),
		Status:            t.mapStatus(params.Get("MessageStatus")),
		ErrorCode:         params.Get("ErrorCode"),
		ErrorMessage:      params.Get("ErrorMessage"),
		RawPayload:        raw,
	}, nil
}

// HealthCheck verifies Twilio API reachability via the account resource.
func (t *Twilio) HealthCheck(ctx context.Context) bool {
	resp, err := t.client.Do(ctx, &HTTPRequest{
		Method: "GET",
		URL:    t.baseURL + ".json",
		Headers: map[string]string{
			"Authorization": "Basic " + t.basicAuth(),
		},
	})
	if err != nil {
		return false
	}
	return resp.StatusCode == 200
}

func (t *Twilio) basicAuth() string {
	return base64.StdEncoding.EncodeToString([]byte(t.cfg.AccountSID + ":" + t.cfg.AuthToken))
}

// mapStatus maps a Twilio message status to the internal status.
func (t *Twilio) mapStatus(twilioStatus string) MessageStatus {
	switch strings.ToLower(twilioStatus) {
	case "queued", "sending":
		return StatusPending
	case "sent":
		return StatusSent
	case "delivered":
		return StatusDelivered
	case "undelivered", "failed":
		return StatusFailed
	default:
		return StatusPending
	}
}
