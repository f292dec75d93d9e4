package taskgraph

import (
	"fmt"
	"time"
)

// TaskError wraps a single task's failure. It is always caught at the task
// boundary and converted into a Failed result; it never aborts the run.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// TimeoutError is the TaskError specialization for a reasoner call that
// exceeded its per-task deadline.
type TimeoutError struct {
	Task    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("task %s: reasoner call exceeded %s", e.Task, e.Timeout)
}
