package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sungwon/message-gateway/internal/provider"
)

// Config holds all gateway configuration, read once at startup.
type Config struct {
	API       APIConfig                `mapstructure:"api"`
	Auth      AuthConfig               `mapstructure:"auth"`
	Channels  ChannelsConfig           `mapstructure:"channels"`
	RateLimit RateLimitConfig          `mapstructure:"rate_limit"`
	Redis     RedisConfig              `mapstructure:"redis"`
	Logging   LoggingConfig            `mapstructure:"logging"`
	Providers []provider.AdapterConfig `mapstructure:"providers"`
}

// APIConfig holds HTTP server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AuthConfig holds the internal auth gate configuration.
type AuthConfig struct {
	// InternalSecret is the shared secret expected from the gateway's
	// peers. Empty means insecure mode: every request is allowed.
	InternalSecret string `mapstructure:"internal_secret"`
	// AllowInsecure permits running with an empty InternalSecret.
	AllowInsecure bool `mapstructure:"allow_insecure"`
}

// ChannelConfig holds the delivery-path flags for one channel.
type ChannelConfig struct {
	UseMicroservice  bool   `mapstructure:"use_microservice"`
	FallbackToLegacy bool   `mapstructure:"fallback_to_legacy"`
	DefaultProvider  string `mapstructure:"default_provider"`
}

// ChannelsConfig holds per-channel delivery configuration.
type ChannelsConfig struct {
	SMS ChannelConfig `mapstructure:"sms"`
}

// RateLimitConfig holds rate governor configuration.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// FailOpen allows requests when the counter store is unreachable.
	FailOpen bool `mapstructure:"fail_open"`
}

// RedisConfig holds the shared counter store connection configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory; a missing
// file is not an error so the gateway can run on environment variables
// alone. Environment variables with prefix GATEWAY_ override file values,
// for example GATEWAY_AUTH_INTERNAL_SECRET overrides auth.internal_secret.
// Provider credential blocks are list-valued and come from the file only.
//
// Every scalar key needs a default below: viper's Unmarshal resolves env
// variables only for keys it already knows about.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 15*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)
	v.SetDefault("auth.internal_secret", "")
	v.SetDefault("auth.allow_insecure", true)
	v.SetDefault("channels.sms.use_microservice", false)
	v.SetDefault("channels.sms.fallback_to_legacy", true)
	v.SetDefault("channels.sms.default_provider", "")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.fail_open", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_files", 5)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Auth.InternalSecret == "" && !c.Auth.AllowInsecure {
		return fmt.Errorf("auth.internal_secret is empty and auth.allow_insecure is false")
	}
	for i := range c.Providers {
		if err := c.Providers[i].Validate(); err != nil {
			return fmt.Errorf("providers[%d]: %w", i, err)
		}
	}
	return nil
}
