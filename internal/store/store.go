package store

import (
	"context"
	"errors"
	"time"

	"github.com/mock-api-gateway/internal/model"
)

// ErrNotFound is returned when an id does not name a stored entity.
var ErrNotFound = errors.New("not found")

// DefinitionStore defines operations on the API definition registry.
// Listing order is significant: newest definitions come first and the
// gateway matcher picks the first match in this order.
type DefinitionStore interface {
	ListDefinitions(ctx context.Context, query string) ([]model.APIDefinition, error)
	GetDefinition(ctx context.Context, id string) (*model.APIDefinition, error)
	CreateDefinition(ctx context.Context, def *model.APIDefinition) error
	CreateDefinitionIfAbsent(ctx context.Context, def *model.APIDefinition) (bool, error)
	UpdateDefinition(ctx context.Context, id string, updates DefinitionUpdates) (before, after *model.APIDefinition, err error)
	SetDefinitionStatus(ctx context.Context, id, status string) (before, after *model.APIDefinition, err error)
	DeleteDefinition(ctx context.Context, id string) (*model.APIDefinition, error)
	TouchDefinition(ctx context.Context, id string, at time.Time) error
	CountDefinitions(ctx context.Context) (int, error)
}

// APIKeyStore defines operations for access key management.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *model.AccessKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*model.AccessKey, error)
	GetAPIKeyByID(ctx context.Context, id string) (*model.AccessKey, error)
	ListAPIKeys(ctx context.Context) ([]model.AccessKey, error)
	CountAPIKeys(ctx context.Context) (int, error)
	UpdateAPIKey(ctx context.Context, id string, updates APIKeyUpdates) (*model.AccessKey, error)
	RegenerateAPIKey(ctx context.Context, id, keyHash, keyPrefix string) (*model.AccessKey, error)
}

// Store combines both DefinitionStore and APIKeyStore.
type Store interface {
	DefinitionStore
	APIKeyStore
}

// DefinitionUpdates holds a partial definition update. Nil fields are left
// untouched.
type DefinitionUpdates struct {
	Name   *string `json:"name,omitempty"`
	Method *string `json:"method,omitempty"`
	Path   *string `json:"path,omitempty"`
	Status *string `json:"status,omitempty"`
}

type APIKeyUpdates struct {
	Name            *string `json:"name,omitempty"`
	Enabled         *bool   `json:"enabled,omitempty"`
	RateLimitPerMin *int    `json:"rateLimitPerMin,omitempty"`
}
