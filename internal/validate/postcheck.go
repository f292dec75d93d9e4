package validate

import (
	"fmt"
	"math"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// balanceTolerance absorbs rounding drift when comparing reported money
// totals against computed ones.
const balanceTolerance = 0.01

// ConflictWarning records a contradiction between two tasks' outputs. It is
// always non-fatal: conflicts ride on the report as warnings so the caller
// can see them, but the report is still returned.
type ConflictWarning struct {
	TaskA   string
	TaskB   string
	Message string
}

func (c ConflictWarning) String() string {
	return fmt.Sprintf("conflict between %s and %s: %s", c.TaskA, c.TaskB, c.Message)
}

// scoreFields are risk payload fields that must sit in [0,100].
var scoreFields = []string{
	"overall_score",
	"debt_risk_score",
	"savings_risk_score",
	"volatility_risk_score",
	"liquidity_risk_score",
}

// PostCheck inspects the payloads of succeeded tasks against the snapshot
// and against each other. It returns detected cross-task conflicts plus
// plain consistency warnings (range violations, arithmetic mismatches).
func PostCheck(snap *domain.Snapshot, payloads map[string]map[string]any) ([]ConflictWarning, []string) {
	var conflicts []ConflictWarning
	var warnings []string

	// Mathematical consistency: the debt task's reported total must match
	// the sum of account balances it was given.
	if debt, ok := payloads["debt"]; ok {
		if reported, ok := floatField(debt, "total_debt"); ok {
			actual := domain.TotalDebtBalance(snap.DebtAccounts)
			if math.Abs(reported-actual) > balanceTolerance {
				warnings = append(warnings, fmt.Sprintf(
					"debt task reported total_debt %.2f but debt accounts sum to %.2f", reported, actual))
			}
		}
	}

	// Range checks on the risk scores.
	if risk, ok := payloads["risk"]; ok {
		for _, field := range scoreFields {
			if v, ok := floatField(risk, field); ok && (v < 0 || v > 100) {
				warnings = append(warnings, fmt.Sprintf("risk task field %s out of range: %.2f", field, v))
			}
		}
	}

	conflicts = append(conflicts, detectBudgetConflicts(payloads)...)

	return conflicts, warnings
}

// detectBudgetConflicts applies the pairwise rules between the budget,
// savings and debt payloads. Each rule fires at most once.
func detectBudgetConflicts(payloads map[string]map[string]any) []ConflictWarning {
	var conflicts []ConflictWarning

	budget, hasBudget := payloads["budget"]
	if !hasBudget {
		return nil
	}
	disposable, ok := floatField(budget, "disposable_income")
	if !ok {
		return nil
	}

	savingsGoal := 0.0
	if savings, ok := payloads["savings"]; ok {
		savingsGoal, _ = floatField(savings, "monthly_savings_goal")
	}
	debtAllocation := 0.0
	if debt, ok := payloads["debt"]; ok {
		debtAllocation, _ = floatField(debt, "monthly_allocation")
	}

	if savingsGoal > disposable {
		conflicts = append(conflicts, ConflictWarning{
			TaskA: "savings",
			TaskB: "budget",
			Message: fmt.Sprintf("savings recommends %.2f/month but budget shows only %.2f disposable income",
				savingsGoal, disposable),
		})
	} else if debtAllocation > 0 && savingsGoal > 0 && debtAllocation+savingsGoal > disposable {
		conflicts = append(conflicts, ConflictWarning{
			TaskA: "debt",
			TaskB: "budget",
			Message: fmt.Sprintf("combined debt allocation and savings goal %.2f exceed %.2f disposable income",
				debtAllocation+savingsGoal, disposable),
		})
	}

	if debtAllocation > disposable {
		conflicts = append(conflicts, ConflictWarning{
			TaskA: "debt",
			TaskB: "budget",
			Message: fmt.Sprintf("debt recommends %.2f/month but budget shows only %.2f disposable income",
				debtAllocation, disposable),
		})
	}

	return conflicts
}

func floatField(payload map[string]any, key string) (float64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
