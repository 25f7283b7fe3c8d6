package store

import (
	"context"
	"fmt"

	"github.com/mock-api-gateway/internal/model"
)

func (m *Memory) CreateAPIKey(ctx context.Context, key *model.AccessKey) error {
	m.keyMu.Lock()
	defer m.keyMu.Unlock()

	if _, exists := m.byHash[key.KeyHash]; exists {
		return fmt.Errorf("insert access key: duplicate key hash")
	}
	m.keys = append(m.keys, *key)
	m.byHash[key.KeyHash] = len(m.keys) - 1
	return nil
}

func (m *Memory) GetAPIKeyByHash(ctx context.Context, keyHash string) (*model.AccessKey, error) {
	m.keyMu.RLock()
	defer m.keyMu.RUnlock()

	idx, ok := m.byHash[keyHash]
	if !ok {
		return nil, fmt.Errorf("access key by hash: %w", ErrNotFound)
	}
	key := m.keys[idx]
	return &key, nil
}

func (m *Memory) GetAPIKeyByID(ctx context.Context, id string) (*model.AccessKey, error) {
	m.keyMu.RLock()
	defer m.keyMu.RUnlock()

	idx := m.keyIndexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("access key %q: %w", id, ErrNotFound)
	}
	key := m.keys[idx]
	return &key, nil
}

// ListAPIKeys returns keys newest first.
func (m *Memory) ListAPIKeys(ctx context.Context) ([]model.AccessKey, error) {
	m.keyMu.RLock()
	defer m.keyMu.RUnlock()

	keys := make([]model.AccessKey, 0, len(m.keys))
	for i := len(m.keys) - 1; i >= 0; i-- {
		keys = append(keys, m.keys[i])
	}
	return keys, nil
}

func (m *Memory) CountAPIKeys(ctx context.Context) (int, error) {
	m.keyMu.RLock()
	defer m.keyMu.RUnlock()
	return len(m.keys), nil
}

func (m *Memory) UpdateAPIKey(ctx context.Context, id string, updates APIKeyUpdates) (*model.AccessKey, error) {
	m.keyMu.Lock()
	defer m.keyMu.Unlock()

	idx := m.keyIndexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("access key %q: %w", id, ErrNotFound)
	}

	key := &m.keys[idx]
	if updates.Name != nil {
		key.Name = *updates.Name
	}
	if updates.Enabled != nil {
		key.Enabled = *updates.Enabled
	}
	if updates.RateLimitPerMin != nil {
		key.RateLimitPerMin = *updates.RateLimitPerMin
	}
	updated := *key
	return &updated, nil
}

// RegenerateAPIKey swaps the secret of an existing key in place. The old
// secret stops authenticating immediately.
func (m *Memory) RegenerateAPIKey(ctx context.Context, id, keyHash, keyPrefix string) (*model.AccessKey, error) {
	m.keyMu.Lock()
	defer m.keyMu.Unlock()

	idx := m.keyIndexLocked(id)
	if idx < 0 {
		return nil, fmt.Errorf("access key %q: %w", id, ErrNotFound)
	}
	if _, exists := m.byHash[keyHash]; exists {
		return nil, fmt.Errorf("regenerate access key: duplicate key hash")
	}

	delete(m.byHash, m.keys[idx].KeyHash)
	m.keys[idx].KeyHash = keyHash
	m.keys[idx].KeyPrefix = keyPrefix
	m.byHash[keyHash] = idx

	updated := m.keys[idx]
	return &updated, nil
}

func (m *Memory) keyIndexLocked(id string) int {
	for i := range m.keys {
		if m.keys[i].ID == id {
			return i
		}
	}
	return -1
}
