// Package stats aggregates dispatch outcomes into running totals.
package stats

import (
	"math"
	"sync"

	"github.com/mock-api-gateway/internal/model"
)

// Aggregator counts dispatch outcomes. Each outcome increments the total and
// exactly one of success or fail under a single lock, so a snapshot never
// sees a total that disagrees with its parts.
type Aggregator struct {
	mu      sync.RWMutex
	success int64
	fail    int64
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record counts one dispatch outcome.
func (a *Aggregator) Record(success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if success {
		a.success++
	} else {
		a.fail++
	}
}

// Snapshot returns the current counters with the success rate recomputed.
func (a *Aggregator) Snapshot() model.Stats {
	a.mu.RLock()
	success, fail := a.success, a.fail
	a.mu.RUnlock()

	return model.Stats{
		TotalCalls:  success + fail,
		Success:     success,
		Fail:        fail,
		SuccessRate: SuccessRate(success, fail),
	}
}

// SuccessRate returns round(success / (success+fail) * 100), or 0 when there
// have been no calls.
func SuccessRate(success, fail int64) int {
	total := success + fail
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(success) / float64(total) * 100))
}
