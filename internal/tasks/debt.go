package tasks

import (
	"fmt"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// DebtTask asks the reasoner for a debt payoff strategy over the snapshot's
// debt accounts.
type DebtTask struct{}

// debtAccountsView flattens the accounts with their derived fields so the
// reasoner sees utilization without having to infer it. Accounts with no
// credit limit omit the derived keys.
func debtAccountsView(accounts []domain.DebtAccount) []map[string]any {
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		entry := map[string]any{
			"account_id":      a.AccountID,
			"account_type":    a.AccountType,
			"account_name":    a.AccountName,
			"current_balance": a.CurrentBalance,
			"apr":             a.APR,
			"minimum_payment": a.MinimumPayment,
		}
		if a.CreditLimit != nil {
			entry["credit_limit"] = *a.CreditLimit
		}
		if rate := a.UtilizationRate(); rate != nil {
			entry["utilization_rate"] = *rate
		}
		if avail := a.AvailableCredit(); avail != nil {
			entry["available_credit"] = *avail
		}
		out = append(out, entry)
	}
	return out
}

func (t *DebtTask) Name() string        { return TaskDebt }
func (t *DebtTask) DependsOn() []string { return nil }

const debtInstructions = `You are a debt analysis expert who helps people pay off their debts efficiently.

Analyze the debt accounts and financial overview in the input data, then produce a payoff strategy.
- Avalanche method pays highest APR first; Snowball pays smallest balance first.
- Treat APR above 15% as high-interest debt.
- total_debt must equal the sum of the account balances exactly.
- Base payment recommendations on the available net cash flow.

Respond with a JSON object containing exactly these fields:
- "total_debt": number >= 0
- "high_interest_debt": number >= 0
- "payoff_strategy": string ("Avalanche", "Snowball" or "Custom")
- "priority_accounts": array of account_id strings in payoff order
- "months_to_payoff": integer >= 0
- "total_interest_paid": number >= 0
- "recommended_monthly_payment": number >= 0
- "monthly_allocation": number >= 0 (of the monthly budget, how much goes to debt)
- "recommendations": array of 3-5 strings
- "warnings": array of strings (may be empty)`

func (t *DebtTask) BuildPayload(snap *domain.Snapshot, _ map[string]map[string]any) map[string]any {
	return map[string]any{
		"instructions":  debtInstructions,
		"debt_accounts": debtAccountsView(snap.DebtAccounts),
		"financial_overview": map[string]any{
			"total_income":         snap.Metrics.TotalIncome,
			"total_expenses":       snap.Metrics.TotalExpenses,
			"net_cash_flow":        snap.Metrics.NetCashFlow,
			"debt_to_income_ratio": snap.Metrics.DebtToIncomeRatio,
		},
	}
}

func (t *DebtTask) ParseResult(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	var err error

	if out["total_debt"], err = getFloat64FieldInRange(raw, "total_debt", 0, maxMoney); err != nil {
		return nil, err
	}
	if out["high_interest_debt"], err = getFloat64FieldInRange(raw, "high_interest_debt", 0, maxMoney); err != nil {
		return nil, err
	}
	if out["payoff_strategy"], err = getStringField(raw, "payoff_strategy", true); err != nil {
		return nil, err
	}
	if out["priority_accounts"], err = getStringSliceField(raw, "priority_accounts", true); err != nil {
		return nil, err
	}

	months, err := getIntField(raw, "months_to_payoff", true)
	if err != nil {
		return nil, err
	}
	if months < 0 {
		return nil, fmt.Errorf("field %q value %d is negative", "months_to_payoff", months)
	}
	out["months_to_payoff"] = months

	if out["total_interest_paid"], err = getFloat64FieldInRange(raw, "total_interest_paid", 0, maxMoney); err != nil {
		return nil, err
	}
	if out["recommended_monthly_payment"], err = getFloat64FieldInRange(raw, "recommended_monthly_payment", 0, maxMoney); err != nil {
		return nil, err
	}
	if out["monthly_allocation"], err = getFloat64FieldInRange(raw, "monthly_allocation", 0, maxMoney); err != nil {
		return nil, err
	}
	if out["recommendations"], err = getStringSliceField(raw, "recommendations", true); err != nil {
		return nil, err
	}
	if out["warnings"], err = getStringSliceField(raw, "warnings", false); err != nil {
		return nil, err
	}

	return out, nil
}

// maxMoney bounds any single money field a task will accept from the
// reasoner. Values past it are treated as hallucinated.
const maxMoney = 1e12
