package models

import "time"

// RunEvent represents a state transition event for a sweep run
type RunEvent struct {
	ID         int64                  `json:"id"`
	RunID      string                 `json:"run_id"`
	At         time.Time              `json:"at"`
	FromStatus *RunStatus             `json:"from_status,omitempty"`
	ToStatus   RunStatus              `json:"to_status"`
	Reason     string                 `json:"reason,omitempty"`
	MetaJSON   map[string]interface{} `json:"meta,omitempty"` // Additional metadata
}
