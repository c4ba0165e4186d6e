package types

import "time"

// RecordEvent is published to the configured broker after a record
// changes, so downstream consumers can follow the audit trail without
// polling the spreadsheet.
type RecordEvent struct {
	// Resource is the canonical resource name the change applies to.
	Resource string `json:"resource"`

	// Action is one of "add", "edit", "delete" or "complete".
	Action string `json:"action"`

	// RowIndex is the 1-based data-row position, 0 for appends.
	RowIndex int `json:"row_index,omitempty"`

	// RecordID is the record's UUID when the resource carries one.
	RecordID string `json:"record_id,omitempty"`

	// Timestamp is when the change was made.
	Timestamp time.Time `json:"timestamp"`
}
