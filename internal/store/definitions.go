package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mock-api-gateway/internal/model"
)

func (m *Memory) ListDefinitions(ctx context.Context, query string) ([]model.APIDefinition, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	m.defMu.RLock()
	defer m.defMu.RUnlock()

	defs := make([]model.APIDefinition, 0, len(m.definitions))
	for _, def := range m.definitions {
		if q != "" &&
			!strings.Contains(strings.ToLower(def.Name), q) &&
			!strings.Contains(strings.ToLower(def.Path), q) {
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (m *Memory) GetDefinition(ctx context.Context, id string) (*model.APIDefinition, error) {
	m.defMu.RLock()
	defer m.defMu.RUnlock()

	idx := m.definitionIndexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("definition %q: %w", id, ErrNotFound)
	}
	def := m.definitions[idx]
	return &def, nil
}

// CreateDefinition assigns an id and inserts def at the front of the listing.
func (m *Memory) CreateDefinition(ctx context.Context, def *model.APIDefinition) error {
	m.defMu.Lock()
	defer m.defMu.Unlock()

	m.insertLocked(def)
	return nil
}

// CreateDefinitionIfAbsent behaves like CreateDefinition unless a definition
// with the same method and path already exists, in which case it reports false.
func (m *Memory) CreateDefinitionIfAbsent(ctx context.Context, def *model.APIDefinition) (bool, error) {
	m.defMu.Lock()
	defer m.defMu.Unlock()

	for _, existing := range m.definitions {
		if existing.Method == def.Method && existing.Path == def.Path {
			return false, nil
		}
	}
	m.insertLocked(def)
	return true, nil
}

func (m *Memory) UpdateDefinition(ctx context.Context, id string, updates DefinitionUpdates) (*model.APIDefinition, *model.APIDefinition, error) {
	m.defMu.Lock()
	defer m.defMu.Unlock()

	idx := m.definitionIndexLocked(id)
	if idx < 0 {
		return nil, nil, fmt.Errorf("definition %q: %w", id, ErrNotFound)
	}

	before := m.definitions[idx]
	after := before
	if updates.Name != nil {
		after.Name = *updates.Name
	}
	if updates.Method != nil {
		after.Method = *updates.Method
	}
	if updates.Path != nil {
		after.Path = *updates.Path
	}
	if updates.Status != nil {
		after.Status = *updates.Status
	}
	m.definitions[idx] = after

	return &before, &after, nil
}

func (m *Memory) SetDefinitionStatus(ctx context.Context, id, status string) (*model.APIDefinition, *model.APIDefinition, error) {
	return m.UpdateDefinition(ctx, id, DefinitionUpdates{Status: &status})
}

func (m *Memory) DeleteDefinition(ctx context.Context, id string) (*model.APIDefinition, error) {
	m.defMu.Lock()
	defer m.defMu.Unlock()

	idx := m.definitionIndexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("definition %q: %w", id, ErrNotFound)
	}
	removed := m.definitions[idx]
	m.definitions = slices.Delete(m.definitions, idx, idx+1)
	return &removed, nil
}

// TouchDefinition records a successful call. A fresh pointer is stored so
// copies handed out earlier keep their own timestamp.
func (m *Memory) TouchDefinition(ctx context.Context, id string, at time.Time) error {
	m.defMu.Lock()
	defer m.defMu.Unlock()

	idx := m.definitionIndexLocked(id)
	if idx < 0 {
		return fmt.Errorf("definition %q: %w", id, ErrNotFound)
	}
	t := at
	m.definitions[idx].LastCalledAt = &t
	return nil
}

func (m *Memory) CountDefinitions(ctx context.Context) (int, error) {
	m.defMu.RLock()
	defer m.defMu.RUnlock()
	return len(m.definitions), nil
}

func (m *Memory) insertLocked(def *model.APIDefinition) {
	def.ID = m.newDefinitionID()
	m.definitions = slices.Insert(m.definitions, 0, *def)
}

func (m *Memory) definitionIndexLocked(id string) int {
	return slices.IndexFunc(m.definitions, func(d model.APIDefinition) bool {
		return d.ID == id
	})
}
