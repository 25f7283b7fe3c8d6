package model

import "time"

// Method names the registry normalizes. Other verbs are stored verbatim.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
)

// APIDefinition is a registered mock API: a method, a path template using
// :name placeholders, and a free-text status label.
type APIDefinition struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Method       string     `json:"method"`
	Path         string     `json:"path"`
	Status       string     `json:"status"`
	LastCalledAt *time.Time `json:"lastCalledAt"`
}

// StatusDefinition is read-only configuration describing a status label.
// Color is a presentation hint for the admin console.
type StatusDefinition struct {
	Key       string `json:"key" yaml:"key"`
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color" yaml:"color"`
	AllowCall bool   `json:"allowCall" yaml:"allowCall"`
	Priority  int    `json:"priority,omitempty" yaml:"priority,omitempty"`
}
