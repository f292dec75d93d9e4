package taskgraph

import (
	"fmt"
	"sync"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// RunState is the mutable state of one pipeline invocation. The snapshot is
// read-only; each task writes exactly one slot in the result map (write-once,
// enforced), and the warnings/errors lists are append-only behind a mutex
// since multiple tasks may append concurrently.
type RunState struct {
	Snapshot *domain.Snapshot

	mu       sync.Mutex
	results  map[string]TaskResult
	warnings []string
	errors   []string
}

// NewRunState creates a run state for one snapshot.
func NewRunState(snap *domain.Snapshot) *RunState {
	return &RunState{
		Snapshot: snap,
		results:  make(map[string]TaskResult),
	}
}

// SetResult records a task's terminal result. A slot can be written exactly
// once; a second write indicates an executor bug and is rejected.
func (s *RunState) SetResult(r TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[r.Task]; exists {
		return fmt.Errorf("SetResult: result slot %q already written", r.Task)
	}
	s.results[r.Task] = r
	return nil
}

// Result returns the recorded result for a task, if any.
func (s *RunState) Result(task string) (TaskResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[task]
	return r, ok
}

// Results returns a copy of the result map.
func (s *RunState) Results() map[string]TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]TaskResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// SucceededPayloads returns the payloads of all succeeded tasks, keyed by
// task name.
func (s *RunState) SucceededPayloads() map[string]map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]map[string]any)
	for name, r := range s.results {
		if r.Kind == ResultSucceeded {
			out[name] = r.Payload
		}
	}
	return out
}

// AddWarning appends to the run's warning list.
func (s *RunState) AddWarning(w string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, w)
}

// AddError appends to the run's error list.
func (s *RunState) AddError(e string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, e)
}

// Warnings returns a copy of the warning list in append order.
func (s *RunState) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

// Errors returns a copy of the error list in append order.
func (s *RunState) Errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errors...)
}
