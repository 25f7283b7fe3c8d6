package auditlog

import (
	"time"

	"github.com/mock-api-gateway/internal/model"
)

// ChangeLog records administrative mutations of API definitions.
type ChangeLog struct {
	ring *Ring[model.ChangeLogEntry]
	now  func() time.Time
}

// NewChangeLog creates a change log retaining the most recent capacity entries.
func NewChangeLog(capacity int) *ChangeLog {
	return &ChangeLog{ring: NewRing[model.ChangeLogEntry](capacity), now: time.Now}
}

// Record appends entry, assigning its id and, if unset, its timestamp.
func (l *ChangeLog) Record(entry model.ChangeLogEntry) model.ChangeLogEntry {
	return l.ring.Append(entry, func(e *model.ChangeLogEntry, id int64) {
		e.ID = id
		if e.Timestamp.IsZero() {
			e.Timestamp = l.now().UTC()
		}
	})
}

// ListByAPI returns entries for apiID, newest first, up to limit (all when 0).
func (l *ChangeLog) ListByAPI(apiID string, limit int) []model.ChangeLogEntry {
	out := make([]model.ChangeLogEntry, 0)
	l.ring.Scan(func(e model.ChangeLogEntry) bool {
		if e.APIID != apiID {
			return true
		}
		out = append(out, e)
		return limit <= 0 || len(out) < limit
	})
	return out
}

// Len returns the number of retained entries.
func (l *ChangeLog) Len() int {
	return l.ring.Len()
}
