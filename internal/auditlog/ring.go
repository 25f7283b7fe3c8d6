// Package auditlog holds the two bounded, newest-first audit trails: gateway
// call outcomes and registry changes.
package auditlog

import "sync"

// Ring is a fixed-capacity log. Append is O(1) and evicts the oldest entry
// once full. It is safe for concurrent use.
type Ring[T any] struct {
	mu     sync.RWMutex
	buf    []T
	head   int // index of the next write
	size   int
	nextID int64
}

// NewRing creates a ring holding at most capacity entries.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity), nextID: 1}
}

// Append assigns the next id via stamp and stores the entry. Id assignment
// and insertion happen under one lock, so ids follow insertion order.
func (r *Ring[T]) Append(entry T, stamp func(e *T, id int64)) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamp(&entry, r.nextID)
	r.nextID++

	r.buf[r.head] = entry
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
	return entry
}

// Scan visits entries newest first until fn returns false.
func (r *Ring[T]) Scan(fn func(T) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := 0; i < r.size; i++ {
		idx := (r.head - 1 - i + len(r.buf)) % len(r.buf)
		if !fn(r.buf[idx]) {
			return
		}
	}
}

// Len returns the number of retained entries.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the capacity.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}
