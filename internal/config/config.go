package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        int      `env:"PORT,default=4000"`
	LogLevel    string   `env:"LOG_LEVEL,default=info"`
	LogFormat   string   `env:"LOG_FORMAT,default=json"`
	CORSOrigins []string `env:"CORS_ORIGINS"`
	SeedFile    string   `env:"SEED_FILE"`

	// Gateway
	KeyHeader            string   `env:"GATEWAY_KEY_HEADER,default=X-Api-Key"`
	EchoStripPrefix      string   `env:"GATEWAY_ECHO_STRIP_PREFIX,default=x-api-"`
	MaxBodyBytes         int64    `env:"GATEWAY_MAX_BODY_BYTES,default=1048576"`
	BlockedStatusMarkers []string `env:"BLOCKED_STATUS_MARKERS"`

	// Registry
	DefaultStatus          string `env:"DEFAULT_STATUS,default=normal"`
	DefaultRateLimitPerMin int    `env:"DEFAULT_RATE_LIMIT_PER_MIN,default=60"`
	CallLogCapacity        int    `env:"CALL_LOG_CAPACITY,default=1000"`
	ChangeLogCapacity      int    `env:"CHANGE_LOG_CAPACITY,default=1000"`
	AdminActor             string `env:"ADMIN_ACTOR,default=system"`

	// HTTP server timeouts
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT,default=15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT,default=60s"`
}

// DefaultBlockedStatusMarkers are the status substrings that make a definition uncallable.
var DefaultBlockedStatusMarkers = []string{"abnormal", "disabled"}

func Load() (*Config, error) {
	return LoadWith(context.Background(), envconfig.OsLookuper())
}

// LoadWith reads configuration through l. Tests pass an envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.LogFormat)
	}

	if strings.TrimSpace(c.KeyHeader) == "" {
		return fmt.Errorf("GATEWAY_KEY_HEADER must not be empty")
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("GATEWAY_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.DefaultRateLimitPerMin < 1 {
		return fmt.Errorf("DEFAULT_RATE_LIMIT_PER_MIN must be positive, got %d", c.DefaultRateLimitPerMin)
	}
	if c.CallLogCapacity < 1 || c.ChangeLogCapacity < 1 {
		return fmt.Errorf("CALL_LOG_CAPACITY and CHANGE_LOG_CAPACITY must be positive")
	}
	if strings.TrimSpace(c.DefaultStatus) == "" {
		return fmt.Errorf("DEFAULT_STATUS must not be empty")
	}

	if len(c.BlockedStatusMarkers) == 0 {
		c.BlockedStatusMarkers = append([]string(nil), DefaultBlockedStatusMarkers...)
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
