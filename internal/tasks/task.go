// Package tasks defines the analysis tasks that run against one financial
// snapshot. Each task is a thin adapter around the reasoner boundary: it
// builds the structured payload, and validates the returned fields against
// its expected shape before the result is accepted.
package tasks

import (
	"github.com/dvloznov/finance-insight/internal/domain"
)

// Declared task names. The report always enumerates tasks in DeclaredOrder
// regardless of completion order.
const (
	TaskDebt     = "debt"
	TaskSavings  = "savings"
	TaskBudget   = "budget"
	TaskRisk     = "risk"
	TaskScenario = "scenario"
)

// DeclaredOrder is the fixed order in which tasks appear in the report.
var DeclaredOrder = []string{TaskDebt, TaskSavings, TaskBudget, TaskRisk, TaskScenario}

// Task is one analysis unit. Implementations must be stateless: BuildPayload
// and ParseResult may run concurrently for different runs.
type Task interface {
	// Name is the task's slot key in the run state and the report.
	Name() string

	// DependsOn lists tasks whose results must exist (success or failure)
	// before this task starts. Empty means independent.
	DependsOn() []string

	// BuildPayload assembles the reasoner payload from the snapshot and,
	// for dependent tasks, the payloads of succeeded upstream tasks.
	BuildPayload(snap *domain.Snapshot, upstream map[string]map[string]any) map[string]any

	// ParseResult validates the raw reasoner output against this task's
	// expected field schema and returns the accepted payload. Any missing
	// or out-of-range field is an error, not a partially valid result.
	ParseResult(raw map[string]any) (map[string]any, error)
}

// All returns the full task set in declared order.
func All() []Task {
	return []Task{
		&DebtTask{},
		&SavingsTask{},
		&BudgetTask{},
		&RiskTask{},
		&ScenarioTask{},
	}
}
