package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/auth"
	"github.com/mock-api-gateway/internal/metrics"
	"github.com/mock-api-gateway/internal/model"
	"github.com/mock-api-gateway/internal/store"
	"github.com/mock-api-gateway/internal/validation"
)

const keyPrefix = "gk_"

// APIKeyService handles access key business logic.
type APIKeyService struct {
	store            store.APIKeyStore
	metrics          *metrics.Metrics
	defaultRateLimit int
	now              func() time.Time
}

// NewAPIKeyService creates a new API key service. Keys issued without a quota
// get defaultRateLimit requests per minute.
func NewAPIKeyService(store store.APIKeyStore, m *metrics.Metrics, defaultRateLimit int) *APIKeyService {
	return &APIKeyService{store: store, metrics: m, defaultRateLimit: defaultRateLimit, now: time.Now}
}

// CreateAPIKeyInput contains the parameters for issuing a new access key.
type CreateAPIKeyInput struct {
	Name            string
	RateLimitPerMin *int
	Enabled         *bool

	// Secret, when set, is used verbatim instead of a generated one. Only
	// the startup seed uses it.
	Secret string
}

// CreateAPIKeyResult contains the output of a successful key creation.
type CreateAPIKeyResult struct {
	APIKey *model.AccessKey
	RawKey string
}

// Create validates input, generates a new access key, and stores its hash.
func (s *APIKeyService) Create(ctx context.Context, input CreateAPIKeyInput) (*CreateAPIKeyResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, NewBadRequest(CodeInvalidRequest, "name is required")
	}

	limit := s.defaultRateLimit
	if input.RateLimitPerMin != nil {
		if err := validation.RateLimitPerMin(*input.RateLimitPerMin); err != nil {
			return nil, NewBadRequest(CodeInvalidRequest, err.Error())
		}
		limit = *input.RateLimitPerMin
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	rawKey := input.Secret
	if rawKey == "" {
		var err error
		if rawKey, err = generateAPIKey(); err != nil {
			log.Error().Err(err).Msg("failed to generate API key")
			return nil, NewInternal(CodeInternal, "Failed to create API key")
		}
	}

	apiKey := &model.AccessKey{
		ID:              uuid.NewString(),
		Name:            name,
		KeyHash:         auth.SHA256Hex(rawKey),
		KeyPrefix:       displayPrefix(rawKey),
		Enabled:         enabled,
		RateLimitPerMin: limit,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.store.CreateAPIKey(ctx, apiKey); err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to create API key")
		return nil, NewInternal(CodeInternal, "Failed to create API key")
	}
	s.metrics.ObserveKeyIssued()

	log.Info().Str("id", apiKey.ID).Str("prefix", apiKey.KeyPrefix).Int("rate_limit_per_min", limit).Msg("access key issued")
	return &CreateAPIKeyResult{APIKey: apiKey, RawKey: rawKey}, nil
}

// List returns all keys, newest first.
func (s *APIKeyService) List(ctx context.Context) ([]model.AccessKey, error) {
	keys, err := s.store.ListAPIKeys(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list API keys")
		return nil, NewInternal(CodeInternal, "Failed to list API keys")
	}
	return keys, nil
}

// Get returns one key by id.
func (s *APIKeyService) Get(ctx context.Context, id string) (*model.AccessKey, error) {
	key, err := s.store.GetAPIKeyByID(ctx, id)
	if err != nil {
		return nil, keyLookupError(err, id)
	}
	return key, nil
}

// Update validates and applies partial updates to an existing key.
func (s *APIKeyService) Update(ctx context.Context, id string, updates store.APIKeyUpdates) (*model.AccessKey, error) {
	if updates.Name != nil {
		trimmed := strings.TrimSpace(*updates.Name)
		if trimmed == "" {
			return nil, NewBadRequest(CodeInvalidRequest, "name cannot be empty")
		}
		updates.Name = &trimmed
	}
	if updates.RateLimitPerMin != nil {
		if err := validation.RateLimitPerMin(*updates.RateLimitPerMin); err != nil {
			return nil, NewBadRequest(CodeInvalidRequest, err.Error())
		}
	}

	key, err := s.store.UpdateAPIKey(ctx, id, updates)
	if err != nil {
		return nil, keyLookupError(err, id)
	}
	log.Info().Str("id", id).Bool("enabled", key.Enabled).Int("rate_limit_per_min", key.RateLimitPerMin).Msg("access key updated")
	return key, nil
}

// Regenerate replaces the secret of an existing key. Id, quota and enabled
// flag are unchanged.
func (s *APIKeyService) Regenerate(ctx context.Context, id string) (*CreateAPIKeyResult, error) {
	rawKey, err := generateAPIKey()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate API key")
		return nil, NewInternal(CodeInternal, "Failed to regenerate API key")
	}

	key, err := s.store.RegenerateAPIKey(ctx, id, auth.SHA256Hex(rawKey), displayPrefix(rawKey))
	if err != nil {
		return nil, keyLookupError(err, id)
	}
	s.metrics.ObserveKeyIssued()

	log.Info().Str("id", id).Str("prefix", key.KeyPrefix).Msg("access key rotated")
	return &CreateAPIKeyResult{APIKey: key, RawKey: rawKey}, nil
}

func keyLookupError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return NewNotFound(CodeNotFound, "API key not found")
	}
	log.Error().Err(err).Str("id", id).Msg("API key store failure")
	return NewInternal(CodeInternal, "Failed to access API key")
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand failed: %w", err)
	}
	return keyPrefix + hex.EncodeToString(b), nil
}

// displayPrefix is the non-secret part of a key shown in listings. Generated
// keys expose the gk_ marker and 13 hex chars of a 64-char secret; any other
// secret, such as a seeded one, exposes at most 4 chars and never more than a
// quarter of it.
func displayPrefix(rawKey string) string {
	if strings.HasPrefix(rawKey, keyPrefix) && len(rawKey) > 32 {
		return rawKey[:16] + "..."
	}
	return rawKey[:min(4, len(rawKey)/4)] + "..."
}
