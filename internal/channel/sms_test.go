package channel

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sungwon/message-gateway/internal/provider"
)

// captureTracker records every telemetry event.
type captureTracker struct {
	events []capturedEvent
}

type capturedEvent struct {
	name   string
	fields map[string]any
}

func (t *captureTracker) Track(event string, fields map[string]any) {
	t.events = append(t.events, capturedEvent{name: event, fields: fields})
}

func newTestRouter(cfg SMSRouterConfig) (*SMSRouter, *provider.Mock, *captureTracker) {
	registry := provider.NewRegistry()
	mock := provider.NewMock("mock", zerolog.Nop())
	registry.Register(mock)

	tracker := &captureTracker{}
	router := NewSMSRouter(cfg, registry, tracker, zerolog.Nop())
	return router, mock, tracker
}

func TestSMSRouter_DirectSend(t *testing.T) {
	router, mock, _ := newTestRouter(SMSRouterConfig{DefaultProvider: "mock"})

	resp := router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if resp.Provider != "mock" {
		t.Errorf("Provider = %q, want mock", resp.Provider)
	}
	if !strings.HasPrefix(resp.SMSID, "mock-") {
		t.Errorf("SMSID = %q, want generated mock id", resp.SMSID)
	}
	if resp.Status != string(provider.StatusSent) {
		t.Errorf("Status = %q, want %q", resp.Status, provider.StatusSent)
	}

	sent := mock.Sent()
	if len(sent) != 1 || sent[0].To != "+15551234567" || sent[0].Body != "hello" {
		t.Errorf("unexpected recorded sends: %+v", sent)
	}
}

func TestSMSRouter_DirectSendFailure(t *testing.T) {
	router, mock, _ := newTestRouter(SMSRouterConfig{DefaultProvider: "mock"})
	mock.QueueResult(provider.SendResult{
		Success:      false,
		Status:       provider.StatusFailed,
		ErrorCode:    "30007",
		ErrorMessage: "Carrier violation",
		Permanent:    true,
	})

	resp := router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if resp.Success {
		t.Fatal("expected failure to pass through")
	}
	if resp.Error != "Carrier violation" {
		t.Errorf("Error = %q", resp.Error)
	}
	if resp.Status != string(provider.StatusFailed) {
		t.Errorf("Status = %q", resp.Status)
	}
	if resp.Retryable {
		t.Error("permanent adapter failures should not be marked retryable")
	}
}

func TestSMSRouter_TransientFailureRetryable(t *testing.T) {
	router, mock, _ := newTestRouter(SMSRouterConfig{DefaultProvider: "mock"})
	mock.QueueResult(provider.SendResult{
		Success:      false,
		Status:       provider.StatusFailed,
		ErrorCode:    "1",
		ErrorMessage: "Throttled",
	})

	resp := router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if resp.Success {
		t.Fatal("expected failure to pass through")
	}
	if !resp.Retryable {
		t.Error("transient adapter failures should be marked retryable")
	}
}

func TestSMSRouter_MicroserviceFallsBackToDirect(t *testing.T) {
	router, mock, _ := newTestRouter(SMSRouterConfig{
		UseMicroservice: true,
		FallbackEnabled: true,
		DefaultProvider: "mock",
	})

	resp := router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if !resp.Success {
		t.Fatalf("fallback should reach the direct path, got error %q", resp.Error)
	}
	if len(mock.Sent()) != 1 {
		t.Error("direct adapter should have been used")
	}
}

func TestSMSRouter_MicroserviceNoFallback(t *testing.T) {
	router, mock, _ := newTestRouter(SMSRouterConfig{
		UseMicroservice: true,
		FallbackEnabled: false,
		DefaultProvider: "mock",
	})

	resp := router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if resp.Success {
		t.Fatal("expected failure with fallback disabled")
	}
	if resp.Provider != "microservice" {
		t.Errorf("Provider = %q, want microservice", resp.Provider)
	}
	if resp.Error != "SMS service temporarily unavailable" {
		t.Errorf("Error = %q", resp.Error)
	}
	if !resp.Retryable {
		t.Error("microservice unavailability should be marked retryable")
	}
	if len(mock.Sent()) != 0 {
		t.Error("direct adapter should not have been used")
	}
}

func TestSMSRouter_NoDefaultProvider(t *testing.T) {
	router, _, _ := newTestRouter(SMSRouterConfig{})

	resp := router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if resp.Success {
		t.Fatal("expected failure with no direct transport wired")
	}
	if resp.Provider != "legacy" {
		t.Errorf("Provider = %q, want legacy", resp.Provider)
	}
	if resp.Error != "legacy SMS service not available" {
		t.Errorf("Error = %q", resp.Error)
	}
	if !resp.Retryable {
		t.Error("missing transport should be marked retryable")
	}
}

func TestSMSRouter_UnknownDefaultProvider(t *testing.T) {
	router, _, _ := newTestRouter(SMSRouterConfig{DefaultProvider: "plivo"})

	resp := router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if resp.Success {
		t.Fatal("expected failure for unregistered provider")
	}
	if resp.Provider != "plivo" {
		t.Errorf("Provider = %q, want plivo", resp.Provider)
	}
	if resp.Error != "unknown provider: plivo" {
		t.Errorf("Error = %q", resp.Error)
	}
	if resp.Retryable {
		t.Error("a configuration error is not retryable")
	}
}

func TestSMSRouter_SendMMS(t *testing.T) {
	router, mock, _ := newTestRouter(SMSRouterConfig{DefaultProvider: "mock"})

	resp := router.SendMMS(context.Background(), "+15551234567", "+15557654321", "pic",
		[]string{"https://example.com/a.jpg"}, nil)

	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Error)
	}
	sent := mock.Sent()
	if len(sent) != 1 || len(sent[0].MediaURLs) != 1 {
		t.Errorf("unexpected recorded sends: %+v", sent)
	}
}

func TestSMSRouter_GetStatus(t *testing.T) {
	router, _, _ := newTestRouter(SMSRouterConfig{DefaultProvider: "mock"})

	resp := router.GetStatus(context.Background(), "sms-1")

	if resp.Success {
		t.Fatal("status lookup has no direct backend")
	}
	if resp.Provider != "legacy" || resp.Error != "legacy SMS service not available" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSMSRouter_Telemetry(t *testing.T) {
	router, _, tracker := newTestRouter(SMSRouterConfig{DefaultProvider: "mock"})

	router.SendSMS(context.Background(), "+15551234567", "+15557654321", "hello", nil)

	if len(tracker.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(tracker.events))
	}
	ev := tracker.events[0]
	if ev.name != "adapter.request" {
		t.Errorf("event = %q, want adapter.request", ev.name)
	}
	if ev.fields["service"] != "sms" {
		t.Errorf("service = %v", ev.fields["service"])
	}
	if ev.fields["operation"] != "send_sms" {
		t.Errorf("operation = %v", ev.fields["operation"])
	}
	if ev.fields["provider"] != "mock" {
		t.Errorf("provider = %v", ev.fields["provider"])
	}
	if ev.fields["success"] != true {
		t.Errorf("success = %v", ev.fields["success"])
	}
	if _, ok := ev.fields["duration_ms"].(float64); !ok {
		t.Errorf("duration_ms = %v (%T), want float64", ev.fields["duration_ms"], ev.fields["duration_ms"])
	}
}

func TestSMSRouter_TelemetryOnFailedPath(t *testing.T) {
	router, _, tracker := newTestRouter(SMSRouterConfig{
		UseMicroservice: true,
		FallbackEnabled: false,
	})

	router.GetStatus(context.Background(), "sms-1")

	if len(tracker.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(tracker.events))
	}
	ev := tracker.events[0]
	if ev.fields["operation"] != "get_sms_status" {
		t.Errorf("operation = %v", ev.fields["operation"])
	}
	if ev.fields["provider"] != "microservice" {
		t.Errorf("provider = %v", ev.fields["provider"])
	}
	if ev.fields["success"] != false {
		t.Errorf("success = %v", ev.fields["success"])
	}
}
