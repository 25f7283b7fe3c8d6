package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mock-api-gateway/internal/auditlog"
	"github.com/mock-api-gateway/internal/metrics"
	"github.com/mock-api-gateway/internal/model"
	"github.com/mock-api-gateway/internal/store"
	"github.com/mock-api-gateway/internal/validation"
)

// DefinitionService manages the API definition registry. Every successful
// mutation appends exactly one change log entry.
type DefinitionService struct {
	store         store.DefinitionStore
	changes       *auditlog.ChangeLog
	metrics       *metrics.Metrics
	statuses      []model.StatusDefinition
	defaultStatus string
	actor         string
}

// DefinitionServiceConfig holds the registry settings taken from config and seed.
type DefinitionServiceConfig struct {
	Statuses      []model.StatusDefinition
	DefaultStatus string
	Actor         string
}

// NewDefinitionService creates a new definition service.
func NewDefinitionService(s store.DefinitionStore, changes *auditlog.ChangeLog, m *metrics.Metrics, cfg DefinitionServiceConfig) *DefinitionService {
	return &DefinitionService{
		store:         s,
		changes:       changes,
		metrics:       m,
		statuses:      append([]model.StatusDefinition(nil), cfg.Statuses...),
		defaultStatus: cfg.DefaultStatus,
		actor:         cfg.Actor,
	}
}

// CreateDefinitionInput contains the parameters for registering a definition.
type CreateDefinitionInput struct {
	Name   string
	Method string
	Path   string
	Status string
}

// Statuses returns the configured status definitions.
func (s *DefinitionService) Statuses() []model.StatusDefinition {
	return append([]model.StatusDefinition(nil), s.statuses...)
}

// List returns definitions in registry order, filtered by a case-insensitive
// substring of name or path when query is non-empty.
func (s *DefinitionService) List(ctx context.Context, query string) ([]model.APIDefinition, error) {
	defs, err := s.store.ListDefinitions(ctx, query)
	if err != nil {
		log.Error().Err(err).Msg("failed to list definitions")
		return nil, NewInternal(CodeInternal, "Failed to list APIs")
	}
	return defs, nil
}

func (s *DefinitionService) Get(ctx context.Context, id string) (*model.APIDefinition, error) {
	def, err := s.store.GetDefinition(ctx, id)
	if err != nil {
		return nil, definitionLookupError(err, id)
	}
	return def, nil
}

// Create validates input and prepends a new definition to the registry.
func (s *DefinitionService) Create(ctx context.Context, input CreateDefinitionInput) (*model.APIDefinition, error) {
	if err := validation.Required("name", input.Name, "method", input.Method, "path", input.Path); err != nil {
		return nil, NewBadRequest(CodeInvalidRequest, err.Error())
	}

	def := &model.APIDefinition{
		Name:   input.Name,
		Method: validation.NormalizeMethod(input.Method),
		Path:   input.Path,
		Status: input.Status,
	}
	if def.Status == "" {
		def.Status = s.defaultStatus
	}

	if err := s.store.CreateDefinition(ctx, def); err != nil {
		log.Error().Err(err).Str("path", def.Path).Msg("failed to create definition")
		return nil, NewInternal(CodeInternal, "Failed to create API")
	}

	s.recordChange(def.ID, model.ActionCreate, nil, &def.Status, "")
	log.Info().Str("id", def.ID).Str("method", def.Method).Str("path", def.Path).Msg("definition created")
	return def, nil
}

// Update applies a partial update. Provided fields overwrite, omitted fields
// are preserved.
func (s *DefinitionService) Update(ctx context.Context, id string, updates store.DefinitionUpdates) (*model.APIDefinition, error) {
	// Stricter than a plain overwrite: a provided name, method or path must
	// be non-blank, since a blank method or path leaves a definition that no
	// gateway call can match.
	if err := nonEmpty("name", updates.Name, "method", updates.Method, "path", updates.Path); err != nil {
		return nil, err
	}
	if updates.Method != nil {
		m := validation.NormalizeMethod(*updates.Method)
		updates.Method = &m
	}

	before, after, err := s.store.UpdateDefinition(ctx, id, updates)
	if err != nil {
		return nil, definitionLookupError(err, id)
	}

	var oldStatus, newStatus *string
	if updates.Status != nil {
		oldStatus, newStatus = &before.Status, &after.Status
	}
	s.recordChange(id, model.ActionUpdate, oldStatus, newStatus, "")
	log.Info().Str("id", id).Msg("definition updated")
	return after, nil
}

// SetStatus moves a definition to one of the configured status names. An
// unknown status is rejected without touching the change log.
func (s *DefinitionService) SetStatus(ctx context.Context, id, status, remark string) (*model.APIDefinition, error) {
	if err := validation.StatusName(status, s.statuses); err != nil {
		return nil, NewBadRequest(CodeInvalidRequest, err.Error())
	}

	before, after, err := s.store.SetDefinitionStatus(ctx, id, status)
	if err != nil {
		return nil, definitionLookupError(err, id)
	}

	s.recordChange(id, model.ActionStatusChange, &before.Status, &after.Status, remark)
	log.Info().Str("id", id).Str("old_status", before.Status).Str("new_status", after.Status).Msg("definition status changed")
	return after, nil
}

func (s *DefinitionService) Delete(ctx context.Context, id string) error {
	removed, err := s.store.DeleteDefinition(ctx, id)
	if err != nil {
		return definitionLookupError(err, id)
	}

	s.recordChange(id, model.ActionDelete, &removed.Status, nil, "")
	log.Info().Str("id", id).Msg("definition deleted")
	return nil
}

// ChangeLog returns the change history of one definition, newest first.
// Unknown and deleted ids yield their retained history, possibly empty.
func (s *DefinitionService) ChangeLog(id string, limit int) []model.ChangeLogEntry {
	return s.changes.ListByAPI(id, limit)
}

// createIfAbsent registers def unless its method and path are already taken.
func (s *DefinitionService) createIfAbsent(ctx context.Context, def *model.APIDefinition) (bool, error) {
	if def.Status == "" {
		def.Status = s.defaultStatus
	}
	created, err := s.store.CreateDefinitionIfAbsent(ctx, def)
	if err != nil {
		log.Error().Err(err).Str("path", def.Path).Msg("failed to create definition")
		return false, NewInternal(CodeInternal, "Failed to create API")
	}
	if created {
		s.recordChange(def.ID, model.ActionCreate, nil, &def.Status, "imported")
	}
	return created, nil
}

func (s *DefinitionService) recordChange(apiID string, action model.ChangeAction, oldStatus, newStatus *string, remark string) {
	s.changes.Record(model.ChangeLogEntry{
		APIID:     apiID,
		Actor:     s.actor,
		Action:    action,
		OldStatus: copyString(oldStatus),
		NewStatus: copyString(newStatus),
		Remark:    remark,
	})
	s.metrics.ObserveChange(string(action))
}

func definitionLookupError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return NewNotFound(CodeNotFound, "API not found")
	}
	log.Error().Err(err).Str("id", id).Msg("definition store failure")
	return NewInternal(CodeInternal, "Failed to access API")
}

// nonEmpty rejects provided-but-blank fields. pairs alternates name, value.
func nonEmpty(pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v, _ := pairs[i+1].(*string); v != nil && strings.TrimSpace(*v) == "" {
			return NewBadRequest(CodeInvalidRequest, pairs[i].(string)+" cannot be empty")
		}
	}
	return nil
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
