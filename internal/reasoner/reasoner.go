// Package reasoner defines the single narrow boundary through which
// analysis tasks reach the external reasoning capability. Everything
// non-deterministic in the pipeline happens behind this interface.
package reasoner

import (
	"context"
)

// Reasoner turns a task-specific structured payload into a structured
// result. Implementations may be slow and may fail; callers must pass a
// context with a deadline and must validate the returned fields before
// trusting them.
type Reasoner interface {
	Invoke(ctx context.Context, taskName string, payload map[string]any) (map[string]any, error)
}

// Func adapts a plain function to the Reasoner interface. Used by tests and
// by callers that stub the capability.
type Func func(ctx context.Context, taskName string, payload map[string]any) (map[string]any, error)

// Invoke implements Reasoner.
func (f Func) Invoke(ctx context.Context, taskName string, payload map[string]any) (map[string]any, error) {
	return f(ctx, taskName, payload)
}
