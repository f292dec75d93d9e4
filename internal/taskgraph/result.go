package taskgraph

// ResultKind tags the variant of a TaskResult.
type ResultKind string

const (
	// ResultSucceeded means the task produced a validated payload.
	ResultSucceeded ResultKind = "succeeded"
	// ResultFailed means the task ran and failed; Reason explains why.
	ResultFailed ResultKind = "failed"
	// ResultSkipped means the task never started, e.g. the run deadline
	// expired first.
	ResultSkipped ResultKind = "skipped"
)

// TaskResult is the terminal outcome of one task within one run. Payload is
// set only for succeeded results.
type TaskResult struct {
	Task    string
	Kind    ResultKind
	Payload map[string]any
	Reason  string
}

// Succeeded builds a success result.
func Succeeded(task string, payload map[string]any) TaskResult {
	return TaskResult{Task: task, Kind: ResultSucceeded, Payload: payload}
}

// Failed builds a failure result.
func Failed(task, reason string) TaskResult {
	return TaskResult{Task: task, Kind: ResultFailed, Reason: reason}
}

// Skipped builds a skipped result.
func Skipped(task, reason string) TaskResult {
	return TaskResult{Task: task, Kind: ResultSkipped, Reason: reason}
}
