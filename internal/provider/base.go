package provider

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// BaseAdapter supplies the default behavior for optional Adapter
// capabilities. Concrete adapters embed it and override only the methods
// for capabilities they actually have. The default answers are part of the
// adapter contract: callers distinguish "not supported" from "provider
// rejected" by the exact failure an unsupported capability produces.
type BaseAdapter struct {
	AdapterName string
	Log         zerolog.Logger

	initialized atomic.Bool
}

// NewBaseAdapter creates the embedded base for a named adapter.
func NewBaseAdapter(name string, log zerolog.Logger) BaseAdapter {
	return BaseAdapter{
		AdapterName: name,
		Log:         log.With().Str("provider", name).Logger(),
	}
}

func (b *BaseAdapter) Name() string { return b.AdapterName }

func (b *BaseAdapter) SupportsMMS() bool      { return false }
func (b *BaseAdapter) SupportsWhatsApp() bool { return false }
func (b *BaseAdapter) SupportsRCS() bool      { return false }

// SendMMS is the default for adapters without MMS support. The message
// text is load-bearing: callers branch on it to tell capability gaps from
// provider rejections.
func (b *BaseAdapter) SendMMS(_ context.Context, _, _, _ string, _ []string, _ map[string]string) SendResult {
	return SendResult{
		Success:      false,
		Status:       StatusFailed,
		ErrorCode:    "unsupported_capability",
		ErrorMessage: fmt.Sprintf("%s does not support MMS", b.AdapterName),
		Segments:     1,
	}
}

// ValidateWebhook accepts everything by default. Adapters with signed
// webhooks must override and verify cryptographically.
func (b *BaseAdapter) ValidateWebhook(_ map[string]string, _ []byte) bool {
	return true
}

// ParseWebhook fails by default. This is a deliberate visible gap, not a
// silent no-op: an adapter receiving webhooks must implement parsing.
func (b *BaseAdapter) ParseWebhook(_ []byte) (WebhookEvent, error) {
	return WebhookEvent{}, fmt.Errorf("%s must implement webhook parsing", b.AdapterName)
}

// HealthCheck reports the initialized flag by default.
func (b *BaseAdapter) HealthCheck(_ context.Context) bool {
	return b.initialized.Load()
}

// Initialize marks the adapter ready. Adapters holding external resources
// override this and call it after acquiring them.
func (b *BaseAdapter) Initialize(_ context.Context) error {
	b.initialized.Store(true)
	b.Log.Info().Msg("provider adapter initialized")
	return nil
}

// Close releases the adapter. Safe to call on an adapter that was never
// initialized.
func (b *BaseAdapter) Close(_ context.Context) error {
	b.initialized.Store(false)
	b.Log.Info().Msg("provider adapter closed")
	return nil
}
