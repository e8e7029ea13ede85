package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mock is an in-memory adapter for tests and local runs. It records every
// send and returns either a scripted result or a generated success.
type Mock struct {
	BaseAdapter

	mu      sync.Mutex
	sent    []MockSend
	results []SendResult
	healthy bool
}

// MockSend records one send call made against a Mock adapter.
type MockSend struct {
	To        string
	From      string
	Body      string
	MediaURLs []string
	Metadata  map[string]string
}

// NewMock creates a mock adapter registered under the given name.
func NewMock(name string, log zerolog.Logger) *Mock {
	return &Mock{
		BaseAdapter: NewBaseAdapter(name, log),
		healthy:     true,
	}
}

func (m *Mock) SupportsMMS() bool { return true }

// QueueResult schedules the next send to return the given result instead
// of a generated success.
func (m *Mock) QueueResult(r SendResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}

// Sent returns a copy of all recorded sends.
func (m *Mock) Sent() []MockSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSend, len(m.sent))
	copy(out, m.sent)
	return out
}

// SetHealthy overrides the health check answer.
func (m *Mock) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = healthy
}

func (m *Mock) SendSMS(_ context.Context, to, from, body string, metadata map[string]string) SendResult {
	return m.record(MockSend{To: to, From: from, Body: body, Metadata: metadata})
}

func (m *Mock) SendMMS(_ context.Context, to, from, text string, mediaURLs []string, metadata map[string]string) SendResult {
	return m.record(MockSend{To: to, From: from, Body: text, MediaURLs: mediaURLs, Metadata: metadata})
}

func (m *Mock) record(send MockSend) SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, send)

	if len(m.results) > 0 {
		r := m.results[0]
		m.results = m.results[1:]
		return r
	}

	return SendResult{
		Success:           true,
		ProviderMessageID: fmt.Sprintf("%s-%s", m.AdapterName, uuid.New().String()),
		Status:            StatusSent,
		Segments:          1,
	}
}

// ParseWebhook parses the mock webhook shape used in tests:
// {"message_id": "...", "status": "..."}.
func (m *Mock) ParseWebhook(body []byte) (WebhookEvent, error) {
	var payload struct {
		MessageID string  `json:"message_id"`
		Status    string  `json:"status"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return WebhookEvent{}, fmt.Errorf("%s: parse webhook: %w", m.AdapterName, err)
	}

	raw := map[string]any{"message_id": payload.MessageID, "status": payload.Status}
	return WebhookEvent{
		ProviderMessageID: payload.MessageID,
		Status:            MessageStatus(payload.Status),
		Timestamp:         payload.Timestamp,
		RawPayload:        raw,
	}, nil
}

func (m *Mock) HealthCheck(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthy
}
