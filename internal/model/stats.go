package model

// Stats is a point-in-time view of dispatch outcomes. SuccessRate is a
// percentage in [0, 100].
type Stats struct {
	TotalCalls  int64 `json:"totalCalls"`
	Success     int64 `json:"success"`
	Fail        int64 `json:"fail"`
	SuccessRate int   `json:"successRate"`
}
