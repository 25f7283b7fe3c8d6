package auditlog

import (
	"time"

	"github.com/mock-api-gateway/internal/model"
)

// CallFilter selects call log entries. Zero values match everything.
type CallFilter struct {
	APIID      string
	Success    *bool
	StatusCode int
	Limit      int
}

// CallLog records one entry per gateway dispatch outcome.
type CallLog struct {
	ring *Ring[model.CallLogEntry]
	now  func() time.Time
}

// NewCallLog creates a call log retaining the most recent capacity entries.
func NewCallLog(capacity int) *CallLog {
	return &CallLog{ring: NewRing[model.CallLogEntry](capacity), now: time.Now}
}

// Record appends entry, assigning its id and, if unset, its timestamp.
func (l *CallLog) Record(entry model.CallLogEntry) model.CallLogEntry {
	return l.ring.Append(entry, func(e *model.CallLogEntry, id int64) {
		e.ID = id
		if e.Timestamp.IsZero() {
			e.Timestamp = l.now().UTC()
		}
	})
}

// List returns matching entries, newest first, up to f.Limit (all when 0).
func (l *CallLog) List(f CallFilter) []model.CallLogEntry {
	out := make([]model.CallLogEntry, 0)
	l.ring.Scan(func(e model.CallLogEntry) bool {
		if f.APIID != "" && (e.APIID == nil || *e.APIID != f.APIID) {
			return true
		}
		if f.Success != nil && e.Success != *f.Success {
			return true
		}
		if f.StatusCode != 0 && e.StatusCode != f.StatusCode {
			return true
		}
		out = append(out, e)
		return f.Limit <= 0 || len(out) < f.Limit
	})
	return out
}

// Len returns the number of retained entries.
func (l *CallLog) Len() int {
	return l.ring.Len()
}
