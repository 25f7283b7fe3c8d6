package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadWith(ctx, envconfig.MapLookuper(map[string]string{}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != 4000 {
			t.Fatalf("expected port 4000, got %d", cfg.Port)
		}
		if cfg.KeyHeader != "X-Api-Key" || cfg.EchoStripPrefix != "x-api-" {
			t.Fatalf("unexpected gateway defaults: %q %q", cfg.KeyHeader, cfg.EchoStripPrefix)
		}
		if strings.Join(cfg.BlockedStatusMarkers, ",") != "abnormal,disabled" {
			t.Fatalf("unexpected markers %v", cfg.BlockedStatusMarkers)
		}
		if cfg.ReadTimeout != 15*time.Second || cfg.CallLogCapacity != 1000 {
			t.Fatalf("unexpected defaults: %v %d", cfg.ReadTimeout, cfg.CallLogCapacity)
		}
		if cfg.Addr() != ":4000" {
			t.Fatalf("unexpected addr %q", cfg.Addr())
		}
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := LoadWith(ctx, envconfig.MapLookuper(map[string]string{
			"PORT":                       "9090",
			"BLOCKED_STATUS_MARKERS":     "down,retired",
			"DEFAULT_RATE_LIMIT_PER_MIN": "5",
			"LOG_FORMAT":                 "console",
		}))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Port != 9090 || cfg.DefaultRateLimitPerMin != 5 || cfg.LogFormat != "console" {
			t.Fatalf("overrides not applied: %+v", cfg)
		}
		if strings.Join(cfg.BlockedStatusMarkers, ",") != "down,retired" {
			t.Fatalf("unexpected markers %v", cfg.BlockedStatusMarkers)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		cases := map[string]map[string]string{
			"port":       {"PORT": "70000"},
			"log format": {"LOG_FORMAT": "xml"},
			"body limit": {"GATEWAY_MAX_BODY_BYTES": "0"},
			"rate limit": {"DEFAULT_RATE_LIMIT_PER_MIN": "0"},
			"capacity":   {"CALL_LOG_CAPACITY": "0"},
		}
		for name, env := range cases {
			t.Run(name, func(t *testing.T) {
				if _, err := LoadWith(ctx, envconfig.MapLookuper(env)); err == nil {
					t.Fatal("expected error")
				}
			})
		}
	})
}

func TestLoadSeed(t *testing.T) {
	t.Run("embedded default", func(t *testing.T) {
		s, err := LoadSeed("")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(s.Statuses) != 4 || len(s.APIs) != 2 || len(s.Keys) != 0 {
			t.Fatalf("unexpected seed sizes: %d %d %d", len(s.Statuses), len(s.APIs), len(s.Keys))
		}
		if s.APIs[0].Path != "/users/:id" || s.Statuses[1].Name != "abnormal" {
			t.Fatalf("unexpected seed content: %+v", s)
		}
	})

	t.Run("file with keys", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		data := `
statuses:
  - {key: normal, name: normal, allowCall: true}
keys:
  - name: ci
    secret: ci-secret
    rateLimitPerMin: 3
  - name: off
    secret: off-secret
    enabled: false
`
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}
		s, err := LoadSeed(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(s.Keys) != 2 || !s.Keys[0].KeyEnabled() || s.Keys[1].KeyEnabled() {
			t.Fatalf("unexpected keys: %+v", s.Keys)
		}
	})

	t.Run("rejects invalid seeds", func(t *testing.T) {
		cases := map[string]string{
			"no statuses":   "apis: []",
			"duplicate key": "statuses: [{key: a, name: a}, {key: a, name: b}]",
			"api missing":   "statuses: [{key: a, name: a}]\napis: [{name: x, method: GET}]",
			"key secret":    "statuses: [{key: a, name: a}]\nkeys: [{name: x}]",
			"bad yaml":      "statuses: [",
		}
		for name, data := range cases {
			t.Run(name, func(t *testing.T) {
				if _, err := ParseSeed([]byte(data)); err == nil {
					t.Fatal("expected error")
				}
			})
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error")
		}
	})
}
