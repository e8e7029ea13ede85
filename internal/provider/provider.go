package provider

import (
	"context"
	"fmt"
)

// MessageStatus represents the delivery state of an outbound message.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusFailed    MessageStatus = "failed"
	StatusRejected  MessageStatus = "rejected"
)

// SendResult contains the outcome of a single send attempt. It is a value
// returned per call and never mutated after construction. Provider-side
// failures are reported through Success/ErrorCode/ErrorMessage rather than
// a Go error, since a send attempt is expected to fail routinely.
type SendResult struct {
	Success           bool
	ProviderMessageID string
	Status            MessageStatus
	ErrorCode         string
	ErrorMessage      string
	// Permanent marks a failure that will not succeed on retry, e.g. an
	// invalid recipient or bad credentials. Meaningful only when Success
	// is false; transport errors and throttling leave it false.
	Permanent   bool
	RawResponse map[string]any
	Cost        float64
	Segments    int
}

// WebhookEvent is a normalized delivery callback parsed from a provider
// webhook. Downstream status-update consumers subscribe to this shape only.
type WebhookEvent struct {
	ProviderMessageID string
	Status            MessageStatus
	Timestamp         float64
	ErrorCode         string
	ErrorMessage      string
	RawPayload        map[string]any
}

// Adapter is the uniform interface every messaging vendor integration
// implements. Capability flags let the registry and router treat all
// providers uniformly while each adapter opts into only the capabilities
// it actually has. Embed BaseAdapter to inherit the default behaviors for
// unsupported capabilities.
type Adapter interface {
	// Name returns the stable, case-insensitive provider identifier.
	Name() string

	// SupportsMMS reports whether the adapter can send media messages.
	SupportsMMS() bool
	// SupportsWhatsApp reports whether the adapter can send WhatsApp messages.
	SupportsWhatsApp() bool
	// SupportsRCS reports whether the adapter can send RCS messages.
	SupportsRCS() bool

	// SendSMS sends a text message. It must not return a hard failure for
	// ordinary provider-side errors; those are reported in the SendResult.
	SendSMS(ctx context.Context, to, from, body string, metadata map[string]string) SendResult

	// SendMMS sends a media message. Adapters without MMS support inherit
	// the BaseAdapter default, which returns a failed SendResult.
	SendMMS(ctx context.Context, to, from, text string, mediaURLs []string, metadata map[string]string) SendResult

	// ValidateWebhook verifies a webhook signature. Adapters implementing
	// no signature check accept everything.
	ValidateWebhook(headers map[string]string, body []byte) bool

	// ParseWebhook parses a raw webhook body into a WebhookEvent.
	ParseWebhook(body []byte) (WebhookEvent, error)

	// HealthCheck reports whether the provider is reachable.
	HealthCheck(ctx context.Context) bool

	// Initialize and Close are lifecycle hooks, called at most once each,
	// in that order, by the owning application.
	Initialize(ctx context.Context) error
	Close(ctx context.Context) error
}

// ErrUnknownProvider is returned by Registry.Get for names that were never
// registered.
type ErrUnknownProvider struct {
	Name string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown provider: %s", e.Name)
}
