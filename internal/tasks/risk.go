package tasks

import (
	"github.com/dvloznov/finance-insight/internal/domain"
)

// RiskTask asks the reasoner for an overall financial health score with
// component breakdowns.
type RiskTask struct{}

// debtSummaryView condenses the accounts for the risk prompt. Credit
// utilization weighs into the debt risk score, so the worst utilization
// across revolving accounts rides along when any account has a limit.
func debtSummaryView(accounts []domain.DebtAccount) map[string]any {
	summary := map[string]any{
		"account_count": len(accounts),
		"total_debt":    domain.TotalDebtBalance(accounts),
	}

	var maxUtilization *float64
	for _, a := range accounts {
		rate := a.UtilizationRate()
		if rate == nil {
			continue
		}
		if maxUtilization == nil || *rate > *maxUtilization {
			maxUtilization = rate
		}
	}
	if maxUtilization != nil {
		summary["max_utilization_rate"] = *maxUtilization
	}

	return summary
}

func (t *RiskTask) Name() string        { return TaskRisk }
func (t *RiskTask) DependsOn() []string { return nil }

const riskInstructions = `You are a financial risk assessor who scores overall financial health.

Analyze the metrics in the input data and score the financial situation.
- 0 is worst, 100 is best, for the overall score and every component score.
- risk_level is "Low", "Medium", "High" or "Critical".
- Weigh debt load, savings buffer, spending volatility and liquidity.

Respond with a JSON object containing exactly these fields:
- "overall_score": integer 0-100
- "risk_level": string
- "debt_risk_score": integer 0-100
- "savings_risk_score": integer 0-100
- "volatility_risk_score": integer 0-100
- "liquidity_risk_score": integer 0-100
- "risk_factors": array of strings
- "protective_factors": array of strings
- "top_priorities": array of strings ordered by importance
- "summary": one-paragraph string`

func (t *RiskTask) BuildPayload(snap *domain.Snapshot, _ map[string]map[string]any) map[string]any {
	return map[string]any{
		"instructions": riskInstructions,
		"metrics":      snap.Metrics,
		"debt_summary": debtSummaryView(snap.DebtAccounts),
	}
}

func (t *RiskTask) ParseResult(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	var err error

	scoreFields := []string{
		"overall_score",
		"debt_risk_score",
		"savings_risk_score",
		"volatility_risk_score",
		"liquidity_risk_score",
	}
	for _, field := range scoreFields {
		score, err := getFloat64FieldInRange(raw, field, 0, 100)
		if err != nil {
			return nil, err
		}
		out[field] = score
	}

	if out["risk_level"], err = getStringField(raw, "risk_level", true); err != nil {
		return nil, err
	}
	if out["risk_factors"], err = getStringSliceField(raw, "risk_factors", false); err != nil {
		return nil, err
	}
	if out["protective_factors"], err = getStringSliceField(raw, "protective_factors", false); err != nil {
		return nil, err
	}
	if out["top_priorities"], err = getStringSliceField(raw, "top_priorities", true); err != nil {
		return nil, err
	}
	if out["summary"], err = getStringField(raw, "summary", true); err != nil {
		return nil, err
	}

	return out, nil
}
