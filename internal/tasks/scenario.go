package tasks

import (
	"fmt"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// ScenarioTask simulates what-if scenarios over the merged results of the
// independent tasks. It is the only dependent task: it starts after every
// independent task has a result, and works with whatever succeeded.
type ScenarioTask struct{}

func (t *ScenarioTask) Name() string { return TaskScenario }

func (t *ScenarioTask) DependsOn() []string {
	return []string{TaskDebt, TaskSavings, TaskBudget, TaskRisk}
}

const scenarioInstructions = `You are a financial planner who simulates what-if scenarios.

The input data contains the measured financial snapshot plus the outputs of
upstream analyses (debt strategy, savings plan, budget, risk score). Some
upstream analyses may be missing; simulate with what is available.

Produce 2-4 scenarios such as "follow the recommended budget", "aggressive
debt payoff" or "income drops 10%". For each scenario estimate the monthly
cash flow change and the resulting savings rate.

Respond with a JSON object containing exactly these fields:
- "scenarios": array of objects, each with:
    - "name": string
    - "monthly_delta": number (change in monthly net cash flow)
    - "projected_savings_rate": number between -100 and 100
    - "months_to_goal": integer >= 0
- "assumptions": array of strings
- "summary": one-paragraph string`

func (t *ScenarioTask) BuildPayload(snap *domain.Snapshot, upstream map[string]map[string]any) map[string]any {
	// Only succeeded upstream tasks appear; the reasoner is told to work
	// with whatever subset it gets.
	results := make(map[string]any, len(upstream))
	for name, payload := range upstream {
		results[name] = payload
	}

	return map[string]any{
		"instructions": scenarioInstructions,
		"financial_overview": map[string]any{
			"total_income":   snap.Metrics.TotalIncome,
			"total_expenses": snap.Metrics.TotalExpenses,
			"net_cash_flow":  snap.Metrics.NetCashFlow,
			"savings_rate":   snap.Metrics.SavingsRate,
		},
		"upstream_results":      results,
		"upstream_result_count": len(results),
		"total_debt":            domain.TotalDebtBalance(snap.DebtAccounts),
	}
}

func (t *ScenarioTask) ParseResult(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any)

	scenarios, err := getObjectSliceField(raw, "scenarios", true)
	if err != nil {
		return nil, err
	}

	parsed := make([]map[string]any, 0, len(scenarios))
	for _, sc := range scenarios {
		entry := make(map[string]any)
		if entry["name"], err = getStringField(sc, "name", true); err != nil {
			return nil, err
		}
		if entry["monthly_delta"], err = getFloat64FieldInRange(sc, "monthly_delta", -maxMoney, maxMoney); err != nil {
			return nil, err
		}
		if entry["projected_savings_rate"], err = getFloat64FieldInRange(sc, "projected_savings_rate", -100, 100); err != nil {
			return nil, err
		}
		months, err := getIntField(sc, "months_to_goal", true)
		if err != nil {
			return nil, err
		}
		if months < 0 {
			return nil, fmt.Errorf("field %q value %d is negative", "months_to_goal", months)
		}
		entry["months_to_goal"] = months
		parsed = append(parsed, entry)
	}
	out["scenarios"] = parsed

	if out["assumptions"], err = getStringSliceField(raw, "assumptions", false); err != nil {
		return nil, err
	}
	if out["summary"], err = getStringField(raw, "summary", true); err != nil {
		return nil, err
	}

	return out, nil
}
