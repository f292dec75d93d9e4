// Package taskgraph runs the analysis tasks against one snapshot under the
// dependency and failure-isolation policy: independent tasks fan out
// concurrently, dependent tasks start only after the barrier, and one
// task's failure never prevents its siblings from completing.
package taskgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insight/internal/reasoner"
	"github.com/dvloznov/finance-insight/internal/tasks"
)

// TaskPolicy bounds one task's reasoner calls.
type TaskPolicy struct {
	// Timeout applies to each individual reasoner call.
	Timeout time.Duration
	// MaxAttempts is the total number of tries (1 = no retry).
	MaxAttempts int
	// Backoff is the fixed wait between attempts.
	Backoff time.Duration
}

// Config tunes the executor. Zero values fall back to defaults.
type Config struct {
	// DefaultPolicy applies to tasks without an entry in Policies.
	DefaultPolicy TaskPolicy
	// Policies overrides the default per task name.
	Policies map[string]TaskPolicy
	// MaxConcurrent bounds the independent-task fan-out.
	MaxConcurrent int
}

const (
	defaultTimeout       = 60 * time.Second
	defaultMaxConcurrent = 4
)

func (c Config) policyFor(task string) TaskPolicy {
	p, ok := c.Policies[task]
	if !ok {
		p = c.DefaultPolicy
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultTimeout
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	return p
}

// Executor runs a fixed task set against run states. Safe for reuse across
// runs; all per-run state lives in the RunState.
type Executor struct {
	tasks    []tasks.Task
	reasoner reasoner.Reasoner
	cfg      Config
	log      zerolog.Logger
}

// NewExecutor creates an executor over the given task set.
func NewExecutor(taskSet []tasks.Task, r reasoner.Reasoner, cfg Config, log zerolog.Logger) *Executor {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	return &Executor{tasks: taskSet, reasoner: r, cfg: cfg, log: log}
}

// Execute runs every task to a terminal result. Independent tasks run
// concurrently under the fan-out bound; dependent tasks run after all of
// their upstreams have a result, success or failure. The returned error is
// non-nil only for executor-level defects (e.g. a double slot write), never
// for task failures.
func (e *Executor) Execute(ctx context.Context, state *RunState) error {
	var independent, dependent []tasks.Task
	for _, t := range e.tasks {
		if len(t.DependsOn()) == 0 {
			independent = append(independent, t)
		} else {
			dependent = append(dependent, t)
		}
	}

	// Fan out the independent set under a semaphore, then barrier.
	sem := make(chan struct{}, e.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	errCh := make(chan error, len(independent))

	for _, t := range independent {
		wg.Add(1)
		go func(t tasks.Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errCh <- e.runTask(ctx, state, t, nil)
		}(t)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}

	// Dependent tasks see the merged upstream payloads. They run even when
	// every upstream failed: a degraded input set is still an input set.
	for _, t := range dependent {
		upstream := make(map[string]map[string]any)
		for name, payload := range state.SucceededPayloads() {
			for _, dep := range t.DependsOn() {
				if name == dep {
					upstream[name] = payload
				}
			}
		}
		if err := e.runTask(ctx, state, t, upstream); err != nil {
			return err
		}
	}

	return nil
}

// runTask drives one task to a terminal result and records it. Task
// failures are converted to Failed results here and never propagate.
func (e *Executor) runTask(ctx context.Context, state *RunState, t tasks.Task, upstream map[string]map[string]any) error {
	name := t.Name()

	if ctx.Err() != nil {
		// Run deadline expired before this task ever started.
		if err := state.SetResult(Skipped(name, "run deadline exceeded before start")); err != nil {
			return err
		}
		state.AddError(fmt.Sprintf("%s: skipped, run deadline exceeded before start", name))
		return nil
	}

	payload := t.BuildPayload(state.Snapshot, upstream)
	policy := e.cfg.policyFor(name)

	started := time.Now()
	result, err := e.invokeWithRetry(ctx, name, t, payload, policy)
	if err != nil {
		reason := failureReason(ctx, err)
		e.log.Warn().
			Str("task", name).
			Dur("elapsed", time.Since(started)).
			Str("reason", reason).
			Msg("Task failed")

		if serr := state.SetResult(Failed(name, reason)); serr != nil {
			return serr
		}
		state.AddError(fmt.Sprintf("%s: %s", name, reason))
		return nil
	}

	e.log.Info().
		Str("task", name).
		Dur("elapsed", time.Since(started)).
		Msg("Task succeeded")

	return state.SetResult(Succeeded(name, result))
}

// invokeWithRetry calls the reasoner up to MaxAttempts times with a fixed
// backoff. A run-level cancellation stops retrying immediately.
func (e *Executor) invokeWithRetry(ctx context.Context, name string, t tasks.Task, payload map[string]any, policy TaskPolicy) (map[string]any, error) {
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			e.log.Debug().Str("task", name).Int("attempt", attempt).Msg("Retrying task")
			select {
			case <-time.After(policy.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, policy.Timeout)
		raw, err := e.reasoner.Invoke(callCtx, name, payload)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				// The run deadline, not the per-call timeout.
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				lastErr = &TimeoutError{Task: name, Timeout: policy.Timeout}
			} else {
				lastErr = &TaskError{Task: name, Err: err}
			}
			continue
		}

		parsed, err := t.ParseResult(raw)
		if err != nil {
			lastErr = &TaskError{Task: name, Err: fmt.Errorf("invalid reasoner output: %w", err)}
			continue
		}
		return parsed, nil
	}

	return nil, lastErr
}

// failureReason maps an invocation error to the reason string recorded on
// the Failed result.
func failureReason(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return "cancelled: deadline exceeded"
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return "timeout"
	}
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr.Err.Error()
	}
	return err.Error()
}
