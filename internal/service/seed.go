package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/config"
)

// ApplySeed registers the seeded definitions and keys. Definitions are
// created last-to-first so the registry lists them in file order.
func ApplySeed(ctx context.Context, seed *config.Seed, defs *DefinitionService, keys *APIKeyService) error {
	for i := len(seed.APIs) - 1; i >= 0; i-- {
		a := seed.APIs[i]
		if _, err := defs.Create(ctx, CreateDefinitionInput{Name: a.Name, Method: a.Method, Path: a.Path, Status: a.Status}); err != nil {
			return fmt.Errorf("seeding api %s %s: %w", a.Method, a.Path, err)
		}
	}

	for _, k := range seed.Keys {
		enabled := k.KeyEnabled()
		input := CreateAPIKeyInput{Name: k.Name, Secret: k.Secret, Enabled: &enabled}
		if k.RateLimitPerMin > 0 {
			limit := k.RateLimitPerMin
			input.RateLimitPerMin = &limit
		}
		if _, err := keys.Create(ctx, input); err != nil {
			return fmt.Errorf("seeding key %q: %w", k.Name, err)
		}
	}

	log.Info().Int("apis", len(seed.APIs)).Int("keys", len(seed.Keys)).Int("statuses", len(seed.Statuses)).Msg("registry seeded")
	return nil
}
