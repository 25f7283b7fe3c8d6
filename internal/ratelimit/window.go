// Package ratelimit implements per-access-key fixed-window rate limiting.
//
// Windows are aligned to wall-clock minute boundaries. When the current
// boundary differs from the stored one the count is reset to zero, so bursts
// of up to twice the quota are possible across a boundary.
package ratelimit

import (
	"sync"
	"time"

	"github.com/mock-api-gateway/internal/model"
)

// WindowSeconds is the length of one rate window.
const WindowSeconds = 60

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter tracks one window per access key id. Admission for a single key is
// serialized on that key's window; different keys never contend beyond the
// brief map lookup.
type Limiter struct {
	mu      sync.RWMutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	mu          sync.Mutex
	windowStart int64
	count       int
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a new in-memory rate limiter.
func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// WindowStart returns the start of the window containing t, in epoch seconds.
func WindowStart(t time.Time) int64 {
	sec := t.Unix()
	return sec - (sec % WindowSeconds)
}

// Allow admits one request for key if its current window still has quota.
// A rejected request does not consume quota.
func (l *Limiter) Allow(key *model.AccessKey) Decision {
	start := WindowStart(l.now())
	w := l.windowFor(key.ID)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.windowStart != start {
		w.windowStart = start
		w.count = 0
	}

	d := Decision{
		Limit:   key.RateLimitPerMin,
		ResetAt: time.Unix(start+WindowSeconds, 0).UTC(),
	}
	if w.count >= key.RateLimitPerMin {
		return d
	}

	w.count++
	d.Allowed = true
	d.Remaining = key.RateLimitPerMin - w.count
	return d
}

func (l *Limiter) windowFor(keyID string) *window {
	l.mu.RLock()
	w, ok := l.windows[keyID]
	l.mu.RUnlock()
	if ok {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok = l.windows[keyID]; ok {
		return w
	}
	w = &window{}
	l.windows[keyID] = w
	return w
}
