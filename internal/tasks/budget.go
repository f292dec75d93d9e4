package tasks

import (
	"github.com/dvloznov/finance-insight/internal/domain"
)

// BudgetTask asks the reasoner for spending optimizations and a recommended
// budget per category.
type BudgetTask struct{}

func (t *BudgetTask) Name() string        { return TaskBudget }
func (t *BudgetTask) DependsOn() []string { return nil }

const budgetInstructions = `You are a budget optimization expert who helps people spend wisely.

Analyze the spending breakdown in the input data and produce an optimized budget.
- Apply the 50/30/20 rule: 50% needs, 30% wants, 20% savings and debt.
- Flag forgotten subscriptions among the recurring charges.
- disposable_income is what remains each month after the recommended budget.
- Prefer a few high-impact changes over many small ones.

Respond with a JSON object containing exactly these fields:
- "overspending_categories": array of category name strings
- "recommended_budget": object mapping category name to monthly amount
- "disposable_income": number
- "monthly_savings_potential": number >= 0
- "recommendations": array of 3-5 strings
- "quick_wins": array of strings (may be empty)`

func (t *BudgetTask) BuildPayload(snap *domain.Snapshot, _ map[string]map[string]any) map[string]any {
	return map[string]any{
		"instructions": budgetInstructions,
		"financial_overview": map[string]any{
			"total_income":        snap.Metrics.TotalIncome,
			"total_expenses":      snap.Metrics.TotalExpenses,
			"net_cash_flow":       snap.Metrics.NetCashFlow,
			"discretionary_ratio": snap.Metrics.DiscretionaryRatio,
		},
		"expenses_by_category": snap.Metrics.ExpensesByCategory,
		"expense_breakdown": map[string]any{
			"fixed":         snap.Metrics.FixedExpenses,
			"variable":      snap.Metrics.VariableExpenses,
			"discretionary": snap.Metrics.DiscretionaryExpenses,
		},
		"recurring_charges": snap.Metrics.RecurringCharges,
	}
}

func (t *BudgetTask) ParseResult(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	var err error

	if out["overspending_categories"], err = getStringSliceField(raw, "overspending_categories", true); err != nil {
		return nil, err
	}
	if out["recommended_budget"], err = getNumberMapField(raw, "recommended_budget", true); err != nil {
		return nil, err
	}
	if out["disposable_income"], err = getFloat64FieldInRange(raw, "disposable_income", -maxMoney, maxMoney); err != nil {
		return nil, err
	}
	if out["monthly_savings_potential"], err = getFloat64FieldInRange(raw, "monthly_savings_potential", 0, maxMoney); err != nil {
		return nil, err
	}
	if out["recommendations"], err = getStringSliceField(raw, "recommendations", true); err != nil {
		return nil, err
	}
	if out["quick_wins"], err = getStringSliceField(raw, "quick_wins", false); err != nil {
		return nil, err
	}

	return out, nil
}
