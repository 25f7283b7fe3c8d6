package store

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mock-api-gateway/internal/model"
)

// Memory is the process-lifetime registry. Definitions and keys are guarded
// by separate locks. Readers always receive copies, so an in-flight dispatch
// sees a definition either before or after a mutation, never halfway.
type Memory struct {
	defMu       sync.RWMutex
	definitions []model.APIDefinition
	nextDefID   atomic.Int64

	keyMu  sync.RWMutex
	keys   []model.AccessKey
	byHash map[string]int
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byHash: make(map[string]int),
	}
}

func (m *Memory) newDefinitionID() string {
	return "api_" + strconv.FormatInt(m.nextDefID.Add(1), 10)
}
