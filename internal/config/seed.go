package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mock-api-gateway/internal/model"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the startup content of the registry.
type Seed struct {
	Statuses []model.StatusDefinition `yaml:"statuses"`
	APIs     []SeedAPI                `yaml:"apis"`
	Keys     []SeedKey                `yaml:"keys"`
}

type SeedAPI struct {
	Name   string `yaml:"name"`
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
	Status string `yaml:"status"`
}

// SeedKey pre-provisions an access key with a known secret.
type SeedKey struct {
	Name            string `yaml:"name"`
	Secret          string `yaml:"secret"`
	Enabled         *bool  `yaml:"enabled"`
	RateLimitPerMin int    `yaml:"rateLimitPerMin"`
}

// LoadSeed reads the seed file at path, or the embedded default when path is empty.
func LoadSeed(path string) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading seed file: %w", err)
		}
		data = b
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Seed) validate() error {
	if len(s.Statuses) == 0 {
		return fmt.Errorf("seed must define at least one status")
	}
	seen := make(map[string]bool, len(s.Statuses))
	for _, st := range s.Statuses {
		if st.Key == "" || st.Name == "" {
			return fmt.Errorf("seed status needs both key and name")
		}
		if seen[st.Key] {
			return fmt.Errorf("duplicate status key %q", st.Key)
		}
		seen[st.Key] = true
	}
	for i, a := range s.APIs {
		if a.Name == "" || a.Method == "" || a.Path == "" {
			return fmt.Errorf("seed api #%d needs name, method and path", i+1)
		}
	}
	for i, k := range s.Keys {
		if k.Secret == "" {
			return fmt.Errorf("seed key #%d needs a secret", i+1)
		}
	}
	return nil
}

// KeyEnabled reports whether a seeded key starts enabled (the default).
func (k SeedKey) KeyEnabled() bool {
	return k.Enabled == nil || *k.Enabled
}
