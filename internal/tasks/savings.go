package tasks

import (
	"fmt"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// SavingsTask asks the reasoner for an emergency fund and savings plan.
type SavingsTask struct{}

func (t *SavingsTask) Name() string        { return TaskSavings }
func (t *SavingsTask) DependsOn() []string { return nil }

const savingsInstructions = `You are a savings strategy expert who helps people build emergency funds and save consistently.

Analyze the financial overview in the input data and produce a savings plan.
- Target an emergency fund of 3-6 months of expenses.
- The monthly savings goal must be realistic given the net cash flow.
- current_savings_rate should echo the measured savings rate.

Respond with a JSON object containing exactly these fields:
- "monthly_savings_capacity": number (may be negative when expenses exceed income)
- "emergency_fund_target": number >= 0
- "monthly_savings_goal": number >= 0
- "months_to_emergency_fund": integer >= 0
- "current_savings_rate": number between -100 and 100
- "recommendations": array of 3-5 strings`

func (t *SavingsTask) BuildPayload(snap *domain.Snapshot, _ map[string]map[string]any) map[string]any {
	return map[string]any{
		"instructions": savingsInstructions,
		"financial_overview": map[string]any{
			"total_income":       snap.Metrics.TotalIncome,
			"total_expenses":     snap.Metrics.TotalExpenses,
			"net_cash_flow":      snap.Metrics.NetCashFlow,
			"savings_rate":       snap.Metrics.SavingsRate,
			"liquidity_ratio":    snap.Metrics.LiquidityRatio,
			"expense_volatility": snap.Metrics.ExpenseVolatility,
		},
		"recurring_charges": snap.Metrics.RecurringCharges,
	}
}

func (t *SavingsTask) ParseResult(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	var err error

	if out["monthly_savings_capacity"], err = getFloat64FieldInRange(raw, "monthly_savings_capacity", -maxMoney, maxMoney); err != nil {
		return nil, err
	}
	if out["emergency_fund_target"], err = getFloat64FieldInRange(raw, "emergency_fund_target", 0, maxMoney); err != nil {
		return nil, err
	}
	if out["monthly_savings_goal"], err = getFloat64FieldInRange(raw, "monthly_savings_goal", 0, maxMoney); err != nil {
		return nil, err
	}

	months, err := getIntField(raw, "months_to_emergency_fund", true)
	if err != nil {
		return nil, err
	}
	if months < 0 {
		return nil, fmt.Errorf("field %q value %d is negative", "months_to_emergency_fund", months)
	}
	out["months_to_emergency_fund"] = months

	if out["current_savings_rate"], err = getFloat64FieldInRange(raw, "current_savings_rate", -100, 100); err != nil {
		return nil, err
	}
	if out["recommendations"], err = getStringSliceField(raw, "recommendations", true); err != nil {
		return nil, err
	}

	return out, nil
}
