package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sungwon/message-gateway/internal/provider"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.API.ReadTimeout != 15*time.Second {
		t.Errorf("API.ReadTimeout = %v", cfg.API.ReadTimeout)
	}
	if !cfg.Auth.AllowInsecure {
		t.Error("Auth.AllowInsecure should default to true")
	}
	if !cfg.RateLimit.Enabled || !cfg.RateLimit.FailOpen {
		t.Errorf("RateLimit = %+v, want enabled fail-open", cfg.RateLimit)
	}
	if cfg.Channels.SMS.UseMicroservice {
		t.Error("Channels.SMS.UseMicroservice should default to false")
	}
	if !cfg.Channels.SMS.FallbackToLegacy {
		t.Error("Channels.SMS.FallbackToLegacy should default to true")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Output != "stdout" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := writeConfigFile(t, `
api:
  port: 9090
auth:
  internal_secret: abc123
channels:
  sms:
    default_provider: twilio
providers:
  - type: twilio
    account_sid: AC123
    auth_token: tok
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Auth.InternalSecret != "abc123" {
		t.Errorf("Auth.InternalSecret = %q", cfg.Auth.InternalSecret)
	}
	if cfg.Channels.SMS.DefaultProvider != "twilio" {
		t.Errorf("DefaultProvider = %q", cfg.Channels.SMS.DefaultProvider)
	}
	if len(cfg.Providers) != 1 || cfg.Providers[0].Type != "twilio" {
		t.Errorf("Providers = %+v", cfg.Providers)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GATEWAY_API_PORT", "9191")
	t.Setenv("GATEWAY_LOGGING_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 9191 {
		t.Errorf("API.Port = %d, want env override 9191", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_EnvOnlyDeployment(t *testing.T) {
	// No config file at all: the secret, counter store, and direct-path
	// provider must all be settable through the environment. A lost env
	// binding here means the gate silently runs insecure.
	t.Setenv("GATEWAY_AUTH_INTERNAL_SECRET", "abc123")
	t.Setenv("GATEWAY_REDIS_ADDR", "localhost:6379")
	t.Setenv("GATEWAY_CHANNELS_SMS_DEFAULT_PROVIDER", "twilio")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Auth.InternalSecret != "abc123" {
		t.Errorf("Auth.InternalSecret = %q, want env value", cfg.Auth.InternalSecret)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want env value", cfg.Redis.Addr)
	}
	if cfg.Channels.SMS.DefaultProvider != "twilio" {
		t.Errorf("Channels.SMS.DefaultProvider = %q, want env value", cfg.Channels.SMS.DefaultProvider)
	}
}

func TestLoad_InsecureRefused(t *testing.T) {
	dir := writeConfigFile(t, `
auth:
  allow_insecure: false
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for empty secret with allow_insecure false")
	}
	if !strings.Contains(err.Error(), "allow_insecure") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_InvalidProvider(t *testing.T) {
	dir := writeConfigFile(t, `
providers:
  - type: twilio
    account_sid: AC123
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for twilio config without auth_token")
	}
	if !strings.Contains(err.Error(), "providers[0]") {
		t.Errorf("error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Auth: AuthConfig{InternalSecret: "abc123"},
		Providers: []provider.AdapterConfig{
			{Type: "mock"},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
