package pipeline

import (
	"fmt"
	"time"

	"github.com/dvloznov/finance-insight/internal/domain"
	"github.com/dvloznov/finance-insight/internal/taskgraph"
	"github.com/dvloznov/finance-insight/internal/tasks"
	"github.com/dvloznov/finance-insight/internal/validate"
)

// Aggregate merges whatever task results exist into the final report and
// runs the post-check over the succeeded payloads. A partial or failed
// status is a normal outcome, not an error: the report is always built.
func Aggregate(state *taskgraph.RunState, now time.Time) *domain.Report {
	results := state.Results()

	taskMap := make(map[string]any, len(tasks.DeclaredOrder))
	succeeded, unsucceeded := 0, 0

	// Every declared task is always a key; nil when it did not succeed.
	for _, name := range tasks.DeclaredOrder {
		r, ok := results[name]
		if ok && r.Kind == taskgraph.ResultSucceeded {
			taskMap[name] = r.Payload
			succeeded++
			continue
		}
		taskMap[name] = nil
		unsucceeded++
		if !ok {
			state.AddError(fmt.Sprintf("%s: no result recorded", name))
		}
	}

	var status domain.RunStatus
	switch {
	case succeeded == 0:
		status = domain.RunStatusFailed
	case unsucceeded == 0:
		status = domain.RunStatusComplete
	default:
		status = domain.RunStatusPartial
	}

	warnings := state.Warnings()

	conflicts, postWarnings := validate.PostCheck(state.Snapshot, state.SucceededPayloads())
	warnings = append(warnings, postWarnings...)
	for _, c := range conflicts {
		warnings = append(warnings, c.String())
	}

	// The report contract declares warnings and errors as arrays; a clean
	// run must serialize them as [] rather than null.
	if warnings == nil {
		warnings = []string{}
	}
	errs := state.Errors()
	if errs == nil {
		errs = []string{}
	}

	return &domain.Report{
		AnalysisID:      state.Snapshot.AnalysisID,
		Status:          status,
		SnapshotSummary: state.Snapshot.Summary(),
		Tasks:           taskMap,
		Warnings:        warnings,
		Errors:          errs,
		GeneratedAt:     now,
	}
}
