package model

import "time"

type ChangeAction string

const (
	ActionCreate       ChangeAction = "create"
	ActionUpdate       ChangeAction = "update"
	ActionStatusChange ChangeAction = "status_change"
	ActionDelete       ChangeAction = "delete"
)

// CallLogEntry records the outcome of one gateway dispatch. API fields are
// nil when the call never resolved to a definition.
type CallLogEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	APIID      *string   `json:"apiId"`
	APIName    *string   `json:"apiName"`
	Path       *string   `json:"path"`
	Method     string    `json:"method"`
	StatusCode int       `json:"statusCode"`
	Success    bool      `json:"success"`
	IP         string    `json:"ip"`
	KeyID      *string   `json:"keyId"`
	Message    string    `json:"message,omitempty"`
}

// ChangeLogEntry records one administrative mutation of a definition.
type ChangeLogEntry struct {
	ID        int64        `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	APIID     string       `json:"apiId"`
	Actor     string       `json:"actor"`
	Action    ChangeAction `json:"action"`
	OldStatus *string      `json:"oldStatus"`
	NewStatus *string      `json:"newStatus"`
	Remark    string       `json:"remark,omitempty"`
}
