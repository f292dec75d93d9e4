package domain

import (
	"time"
)

// RunStatus classifies the overall outcome of one analysis run.
type RunStatus string

const (
	// RunStatusComplete means every task succeeded.
	RunStatusComplete RunStatus = "complete"
	// RunStatusPartial means at least one task succeeded and at least one did not.
	RunStatusPartial RunStatus = "partial"
	// RunStatusFailed means no task succeeded.
	RunStatusFailed RunStatus = "failed"
)

// Report is the final output shape handed to the API/UI collaborator.
// Every declared task name is always present as a key in Tasks; the value
// is nil when that task did not succeed.
type Report struct {
	AnalysisID      string          `json:"analysis_id"`
	Status          RunStatus       `json:"status"`
	SnapshotSummary SnapshotSummary `json:"snapshot_summary"`
	Tasks           map[string]any  `json:"tasks"`
	Warnings        []string        `json:"warnings"`
	Errors          []string        `json:"errors"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
