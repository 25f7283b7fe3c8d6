// Package policy decides whether a definition may be called based on its
// status label.
package policy

import (
	"strings"

	"github.com/mock-api-gateway/internal/model"
)

// Default marker substrings for the "abnormal" and "disabled" statuses.
const (
	MarkerAbnormal = "abnormal"
	MarkerDisabled = "disabled"
)

// StatusPolicy blocks any definition whose status label contains one of its
// markers. StatusDefinition.AllowCall is not consulted.
type StatusPolicy struct {
	markers []string
}

// NewStatusPolicy creates a policy for the given markers. Empty markers are
// ignored; with none given the two default markers apply.
func NewStatusPolicy(markers ...string) *StatusPolicy {
	p := &StatusPolicy{}
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			p.markers = append(p.markers, m)
		}
	}
	if len(p.markers) == 0 {
		p.markers = []string{MarkerAbnormal, MarkerDisabled}
	}
	return p
}

// IsCallable reports whether def may be dispatched.
func (p *StatusPolicy) IsCallable(def *model.APIDefinition) bool {
	for _, m := range p.markers {
		if strings.Contains(def.Status, m) {
			return false
		}
	}
	return true
}

// Markers returns the configured marker substrings.
func (p *StatusPolicy) Markers() []string {
	return append([]string(nil), p.markers...)
}
