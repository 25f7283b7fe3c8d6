package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mock-api-gateway/internal/model"
)

func TestMemoryDefinitionLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first := &model.APIDefinition{Name: "User lookup", Method: "GET", Path: "/users/:id", Status: "normal"}
	second := &model.APIDefinition{Name: "Create order", Method: "POST", Path: "/orders", Status: "paid"}
	require.NoError(t, m.CreateDefinition(ctx, first))
	require.NoError(t, m.CreateDefinition(ctx, second))

	assert.Equal(t, "api_1", first.ID)
	assert.Equal(t, "api_2", second.ID)

	t.Run("lists newest first", func(t *testing.T) {
		defs, err := m.ListDefinitions(ctx, "")
		require.NoError(t, err)
		require.Len(t, defs, 2)
		assert.Equal(t, second.ID, defs[0].ID)
		assert.Equal(t, first.ID, defs[1].ID)
	})

	t.Run("query matches name or path case-insensitively", func(t *testing.T) {
		defs, err := m.ListDefinitions(ctx, "USERS")
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, first.ID, defs[0].ID)

		defs, err = m.ListDefinitions(ctx, "order")
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, second.ID, defs[0].ID)
	})

	t.Run("update preserves omitted fields", func(t *testing.T) {
		name := "Order create"
		before, after, err := m.UpdateDefinition(ctx, second.ID, DefinitionUpdates{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Create order", before.Name)
		assert.Equal(t, "Order create", after.Name)
		assert.Equal(t, "/orders", after.Path)
		assert.Equal(t, "paid", after.Status)
	})

	t.Run("touch sets lastCalledAt without mutating earlier copies", func(t *testing.T) {
		snapshot, err := m.GetDefinition(ctx, first.ID)
		require.NoError(t, err)
		require.Nil(t, snapshot.LastCalledAt)

		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, m.TouchDefinition(ctx, first.ID, at))

		got, err := m.GetDefinition(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastCalledAt)
		assert.True(t, got.LastCalledAt.Equal(at))
		assert.Nil(t, snapshot.LastCalledAt)
	})

	t.Run("delete removes the definition", func(t *testing.T) {
		removed, err := m.DeleteDefinition(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, removed.ID)

		_, err = m.GetDefinition(ctx, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = m.DeleteDefinition(ctx, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ids are never reused", func(t *testing.T) {
		third := &model.APIDefinition{Name: "third", Method: "GET", Path: "/third"}
		require.NoError(t, m.CreateDefinition(ctx, third))
		assert.Equal(t, "api_3", third.ID)
	})
}

func TestMemoryCreateDefinitionIfAbsent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	created, err := m.CreateDefinitionIfAbsent(ctx, &model.APIDefinition{Name: "a", Method: "GET", Path: "/a/:id"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = m.CreateDefinitionIfAbsent(ctx, &model.APIDefinition{Name: "again", Method: "GET", Path: "/a/:id"})
	require.NoError(t, err)
	assert.False(t, created)

	created, err = m.CreateDefinitionIfAbsent(ctx, &model.APIDefinition{Name: "post", Method: "POST", Path: "/a/:id"})
	require.NoError(t, err)
	assert.True(t, created)

	n, err := m.CountDefinitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryConcurrentCreatesAssignUniqueIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.CreateDefinition(ctx, &model.APIDefinition{Name: "x", Method: "GET", Path: "/x"})
		}()
	}
	wg.Wait()

	defs, err := m.ListDefinitions(ctx, "")
	require.NoError(t, err)
	require.Len(t, defs, 50)

	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		_, dup := seen[d.ID]
		require.False(t, dup, "duplicate id %s", d.ID)
		seen[d.ID] = struct{}{}
	}
}

func TestMemoryAPIKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	key := &model.AccessKey{
		ID:              "key-1",
		Name:            "ci",
		KeyHash:         "hash-1",
		KeyPrefix:       "gk_abc...",
		Enabled:         true,
		RateLimitPerMin: 10,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, m.CreateAPIKey(ctx, key))
	require.Error(t, m.CreateAPIKey(ctx, &model.AccessKey{ID: "key-2", KeyHash: "hash-1"}))

	byHash, err := m.GetAPIKeyByHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "key-1", byHash.ID)

	disabled := false
	updated, err := m.UpdateAPIKey(ctx, "key-1", APIKeyUpdates{Enabled: &disabled})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, 10, updated.RateLimitPerMin)

	rotated, err := m.RegenerateAPIKey(ctx, "key-1", "hash-2", "gk_def...")
	require.NoError(t, err)
	assert.Equal(t, "key-1", rotated.ID)
	assert.Equal(t, "gk_def...", rotated.KeyPrefix)

	_, err = m.GetAPIKeyByHash(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)

	byHash, err = m.GetAPIKeyByHash(ctx, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, "key-1", byHash.ID)
	assert.Equal(t, "ci", byHash.Name)

	_, err = m.GetAPIKeyByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
