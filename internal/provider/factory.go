package provider

import (
	"fmt"

	"github.com/rs/zerolog"
)

// AdapterConfig describes one vendor adapter to construct at startup.
type AdapterConfig struct {
	Type                string `mapstructure:"type"`
	AccountSID          string `mapstructure:"account_sid"`
	AuthToken           string `mapstructure:"auth_token"`
	MessagingServiceSID string `mapstructure:"messaging_service_sid"`
	APIKey              string `mapstructure:"api_key"`
	APISecret           string `mapstructure:"api_secret"`
	SignatureSecret     string `mapstructure:"signature_secret"`
	Endpoint            string `mapstructure:"endpoint"`
}

// Validate checks that the config names a type and carries the credentials
// that type requires.
func (c AdapterConfig) Validate() error {
	switch c.Type {
	case "twilio":
		if c.AccountSID == "" || c.AuthToken == "" {
			return fmt.Errorf("twilio adapter requires account_sid and auth_token")
		}
	case "vonage":
		if c.APIKey == "" || c.APISecret == "" {
			return fmt.Errorf("vonage adapter requires api_key and api_secret")
		}
	case "mock":
	case "":
		return fmt.Errorf("adapter type is required")
	}
	return nil
}

// NewAdapter creates an adapter instance from the given config and HTTP client.
func NewAdapter(cfg AdapterConfig, client HTTPClient, log zerolog.Logger) (Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid adapter config: %w", err)
	}

	switch cfg.Type {
	case "twilio":
		return NewTwilio(TwilioConfig{
			AccountSID:          cfg.AccountSID,
			AuthToken:           cfg.AuthToken,
			MessagingServiceSID: cfg.MessagingServiceSID,
			Endpoint:            cfg.Endpoint,
		}, client, log), nil
	case "vonage":
		return NewVonage(VonageConfig{
			APIKey:          cfg.APIKey,
			APISecret:       cfg.APISecret,
			SignatureSecret: cfg.SignatureSecret,
			Endpoint:        cfg.Endpoint,
		}, client, log), nil
	case "mock":
		return NewMock("mock", log), nil
	default:
		return nil, fmt.Errorf("unsupported adapter type: %s", cfg.Type)
	}
}
