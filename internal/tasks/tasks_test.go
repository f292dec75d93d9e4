package tasks

import (
	"strings"
	"testing"

	"github.com/dvloznov/finance-insight/internal/domain"
)

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		AnalysisID: "test-analysis",
		DebtAccounts: []domain.DebtAccount{
			{AccountID: "cc-1", AccountType: "credit_card", CurrentBalance: 3000, APR: 24.5, MinimumPayment: 90},
			{AccountID: "loan-1", AccountType: "loan", CurrentBalance: 9000, APR: 6.0, MinimumPayment: 250},
		},
		Metrics: domain.Metrics{
			TotalIncome:   4000,
			TotalExpenses: 3000,
			NetCashFlow:   1000,
			SavingsRate:   25,
		},
	}
}

func validDebtResult() map[string]any {
	return map[string]any{
		"total_debt":                  12000.0,
		"high_interest_debt":          3000.0,
		"payoff_strategy":             "Avalanche",
		"priority_accounts":           []any{"cc-1", "loan-1"},
		"months_to_payoff":            14.0,
		"total_interest_paid":         820.0,
		"recommended_monthly_payment": 900.0,
		"monthly_allocation":          900.0,
		"recommendations":             []any{"pay cc-1 first", "stop new charges", "automate payments"},
		"warnings":                    []any{},
	}
}

func TestAll_DeclaredOrder(t *testing.T) {
	taskSet := All()
	if len(taskSet) != len(DeclaredOrder) {
		t.Fatalf("All() returned %d tasks, want %d", len(taskSet), len(DeclaredOrder))
	}
	for i, task := range taskSet {
		if task.Name() != DeclaredOrder[i] {
			t.Errorf("task %d is %q, want %q", i, task.Name(), DeclaredOrder[i])
		}
	}
}

func TestDependencies(t *testing.T) {
	for _, task := range All() {
		deps := task.DependsOn()
		if task.Name() == TaskScenario {
			if len(deps) != 4 {
				t.Errorf("scenario depends on %v, want the four independent tasks", deps)
			}
			continue
		}
		if len(deps) != 0 {
			t.Errorf("%s depends on %v, want none", task.Name(), deps)
		}
	}
}

func TestDebtTask_BuildPayloadDerivedFields(t *testing.T) {
	limit := 5000.0
	snap := &domain.Snapshot{
		DebtAccounts: []domain.DebtAccount{
			{AccountID: "cc-1", AccountType: "credit_card", CurrentBalance: 2000, CreditLimit: &limit, APR: 22, MinimumPayment: 60},
			{AccountID: "loan-1", AccountType: "loan", CurrentBalance: 9000, APR: 6, MinimumPayment: 250},
		},
	}

	payload := (&DebtTask{}).BuildPayload(snap, nil)
	accounts, ok := payload["debt_accounts"].([]map[string]any)
	if !ok {
		t.Fatalf("debt_accounts is %T", payload["debt_accounts"])
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}

	if got := accounts[0]["utilization_rate"]; got != 40.0 {
		t.Errorf("cc-1 utilization_rate = %v, want 40", got)
	}
	if got := accounts[0]["available_credit"]; got != 3000.0 {
		t.Errorf("cc-1 available_credit = %v, want 3000", got)
	}

	// Accounts without a credit limit carry no derived keys.
	for _, key := range []string{"credit_limit", "utilization_rate", "available_credit"} {
		if _, ok := accounts[1][key]; ok {
			t.Errorf("loan-1 has %s despite having no credit limit", key)
		}
	}
}

func TestDebtTask_ParseResult(t *testing.T) {
	task := &DebtTask{}

	t.Run("valid", func(t *testing.T) {
		out, err := task.ParseResult(validDebtResult())
		if err != nil {
			t.Fatalf("ParseResult: %v", err)
		}
		if out["payoff_strategy"] != "Avalanche" {
			t.Errorf("payoff_strategy = %v", out["payoff_strategy"])
		}
		if out["months_to_payoff"] != 14 {
			t.Errorf("months_to_payoff = %v, want 14", out["months_to_payoff"])
		}
	})

	tests := []struct {
		name   string
		mutate func(m map[string]any)
		field  string
	}{
		{"missing total_debt", func(m map[string]any) { delete(m, "total_debt") }, "total_debt"},
		{"negative total_debt", func(m map[string]any) { m["total_debt"] = -1.0 }, "total_debt"},
		{"wrong type strategy", func(m map[string]any) { m["payoff_strategy"] = 7.0 }, "payoff_strategy"},
		{"fractional months", func(m map[string]any) { m["months_to_payoff"] = 3.5 }, "months_to_payoff"},
		{"negative months", func(m map[string]any) { m["months_to_payoff"] = -2.0 }, "months_to_payoff"},
		{"absurd money value", func(m map[string]any) { m["total_interest_paid"] = 1e15 }, "total_interest_paid"},
		{"missing recommendations", func(m map[string]any) { delete(m, "recommendations") }, "recommendations"},
		{"non-string priority account", func(m map[string]any) { m["priority_accounts"] = []any{1.0} }, "priority_accounts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validDebtResult()
			tt.mutate(raw)

			_, err := task.ParseResult(raw)
			if err == nil {
				t.Fatal("ParseResult accepted invalid payload")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %q", err.Error(), tt.field)
			}
		})
	}
}

func TestDebtTask_MissingWarningsIsFine(t *testing.T) {
	raw := validDebtResult()
	delete(raw, "warnings")

	if _, err := (&DebtTask{}).ParseResult(raw); err != nil {
		t.Errorf("optional warnings field rejected: %v", err)
	}
}

func TestSavingsTask_ParseResult(t *testing.T) {
	task := &SavingsTask{}

	valid := map[string]any{
		"monthly_savings_capacity": 1000.0,
		"emergency_fund_target":    9000.0,
		"monthly_savings_goal":     600.0,
		"months_to_emergency_fund": 15.0,
		"current_savings_rate":     25.0,
		"recommendations":          []any{"automate transfers", "use a high yield account", "review quarterly"},
	}

	if _, err := task.ParseResult(valid); err != nil {
		t.Fatalf("ParseResult rejected valid payload: %v", err)
	}

	t.Run("negative capacity allowed", func(t *testing.T) {
		raw := map[string]any{}
		for k, v := range valid {
			raw[k] = v
		}
		raw["monthly_savings_capacity"] = -200.0
		if _, err := task.ParseResult(raw); err != nil {
			t.Errorf("negative capacity rejected: %v", err)
		}
	})

	t.Run("savings rate out of range", func(t *testing.T) {
		raw := map[string]any{}
		for k, v := range valid {
			raw[k] = v
		}
		raw["current_savings_rate"] = 150.0
		if _, err := task.ParseResult(raw); err == nil {
			t.Error("savings rate above 100 accepted")
		}
	})
}

func TestBudgetTask_ParseResult(t *testing.T) {
	task := &BudgetTask{}

	valid := map[string]any{
		"overspending_categories":   []any{"Food & Dining"},
		"recommended_budget":        map[string]any{"Housing": 1500.0, "Food & Dining": 400.0},
		"disposable_income":         600.0,
		"monthly_savings_potential": 350.0,
		"recommendations":           []any{"cap dining out", "cancel unused gym", "batch groceries"},
		"quick_wins":                []any{"cancel duplicate streaming"},
	}

	out, err := task.ParseResult(valid)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}

	budget, ok := out["recommended_budget"].(map[string]float64)
	if !ok {
		t.Fatalf("recommended_budget is %T", out["recommended_budget"])
	}
	if budget["Housing"] != 1500 {
		t.Errorf("recommended_budget[Housing] = %v, want 1500", budget["Housing"])
	}

	t.Run("non-number budget entry", func(t *testing.T) {
		raw := map[string]any{}
		for k, v := range valid {
			raw[k] = v
		}
		raw["recommended_budget"] = map[string]any{"Housing": "lots"}
		if _, err := task.ParseResult(raw); err == nil {
			t.Error("string budget entry accepted")
		}
	})
}

func TestRiskTask_BuildPayloadMaxUtilization(t *testing.T) {
	lowLimit := 4000.0
	highLimit := 2500.0
	snap := &domain.Snapshot{
		DebtAccounts: []domain.DebtAccount{
			{AccountID: "cc-1", AccountType: "credit_card", CurrentBalance: 1600, CreditLimit: &lowLimit},
			{AccountID: "cc-2", AccountType: "credit_card", CurrentBalance: 2000, CreditLimit: &highLimit},
			{AccountID: "loan-1", AccountType: "loan", CurrentBalance: 9000},
		},
	}

	payload := (&RiskTask{}).BuildPayload(snap, nil)
	summary, ok := payload["debt_summary"].(map[string]any)
	if !ok {
		t.Fatalf("debt_summary is %T", payload["debt_summary"])
	}

	if got := summary["max_utilization_rate"]; got != 80.0 {
		t.Errorf("max_utilization_rate = %v, want 80", got)
	}

	noLimits := &domain.Snapshot{
		DebtAccounts: []domain.DebtAccount{
			{AccountID: "loan-1", AccountType: "loan", CurrentBalance: 9000},
		},
	}
	summary = (&RiskTask{}).BuildPayload(noLimits, nil)["debt_summary"].(map[string]any)
	if _, ok := summary["max_utilization_rate"]; ok {
		t.Error("max_utilization_rate present with no credit limits in play")
	}
}

func TestRiskTask_ParseResult(t *testing.T) {
	task := &RiskTask{}

	valid := map[string]any{
		"overall_score":         62.0,
		"risk_level":            "Medium",
		"debt_risk_score":       40.0,
		"savings_risk_score":    70.0,
		"volatility_risk_score": 55.0,
		"liquidity_risk_score":  80.0,
		"risk_factors":          []any{"high card APR"},
		"protective_factors":    []any{"positive cash flow"},
		"top_priorities":        []any{"pay down cc-1"},
		"summary":               "Overall moderate risk driven by card debt.",
	}

	if _, err := task.ParseResult(valid); err != nil {
		t.Fatalf("ParseResult rejected valid payload: %v", err)
	}

	for _, field := range []string{"overall_score", "debt_risk_score", "savings_risk_score", "volatility_risk_score", "liquidity_risk_score"} {
		t.Run(field+" out of range", func(t *testing.T) {
			raw := map[string]any{}
			for k, v := range valid {
				raw[k] = v
			}
			raw[field] = 101.0
			if _, err := task.ParseResult(raw); err == nil {
				t.Errorf("%s above 100 accepted", field)
			}
		})
	}
}

func TestScenarioTask_BuildPayload(t *testing.T) {
	task := &ScenarioTask{}
	snap := testSnapshot()

	t.Run("with upstream results", func(t *testing.T) {
		upstream := map[string]map[string]any{
			"debt":    {"total_debt": 12000.0},
			"savings": {"monthly_savings_goal": 500.0},
		}

		payload := task.BuildPayload(snap, upstream)

		if payload["upstream_result_count"] != 2 {
			t.Errorf("upstream_result_count = %v, want 2", payload["upstream_result_count"])
		}
		results, ok := payload["upstream_results"].(map[string]any)
		if !ok {
			t.Fatalf("upstream_results is %T", payload["upstream_results"])
		}
		if _, ok := results["debt"]; !ok {
			t.Error("debt result missing from upstream_results")
		}
	})

	t.Run("no upstream results still builds", func(t *testing.T) {
		payload := task.BuildPayload(snap, map[string]map[string]any{})
		if payload["upstream_result_count"] != 0 {
			t.Errorf("upstream_result_count = %v, want 0", payload["upstream_result_count"])
		}
		if payload["total_debt"] != 12000.0 {
			t.Errorf("total_debt = %v, want 12000", payload["total_debt"])
		}
	})
}

func TestScenarioTask_ParseResult(t *testing.T) {
	task := &ScenarioTask{}

	valid := map[string]any{
		"scenarios": []any{
			map[string]any{
				"name":                   "follow recommended budget",
				"monthly_delta":          350.0,
				"projected_savings_rate": 32.0,
				"months_to_goal":         10.0,
			},
			map[string]any{
				"name":                   "income drops 10%",
				"monthly_delta":          -400.0,
				"projected_savings_rate": 12.5,
				"months_to_goal":         24.0,
			},
		},
		"assumptions": []any{"income stays constant otherwise"},
		"summary":     "Budget adherence reaches the emergency fund in under a year.",
	}

	out, err := task.ParseResult(valid)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}

	scenarios, ok := out["scenarios"].([]map[string]any)
	if !ok {
		t.Fatalf("scenarios is %T", out["scenarios"])
	}
	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(scenarios))
	}
	if scenarios[1]["monthly_delta"] != -400.0 {
		t.Errorf("monthly_delta = %v, want -400", scenarios[1]["monthly_delta"])
	}

	t.Run("projected rate out of range", func(t *testing.T) {
		raw := map[string]any{
			"scenarios": []any{
				map[string]any{
					"name":                   "broken",
					"monthly_delta":          0.0,
					"projected_savings_rate": 180.0,
					"months_to_goal":         1.0,
				},
			},
			"summary": "x",
		}
		if _, err := task.ParseResult(raw); err == nil {
			t.Error("projected_savings_rate above 100 accepted")
		}
	})

	t.Run("negative months_to_goal rejected", func(t *testing.T) {
		raw := map[string]any{
			"scenarios": []any{
				map[string]any{
					"name":                   "broken",
					"monthly_delta":          0.0,
					"projected_savings_rate": 20.0,
					"months_to_goal":         -5.0,
				},
			},
			"summary": "x",
		}
		_, err := task.ParseResult(raw)
		if err == nil {
			t.Fatal("negative months_to_goal accepted")
		}
		if !strings.Contains(err.Error(), "months_to_goal") {
			t.Errorf("error %q does not name the field", err)
		}
	})

	t.Run("empty summary rejected", func(t *testing.T) {
		raw := map[string]any{
			"scenarios": valid["scenarios"],
			"summary":   "",
		}
		if _, err := task.ParseResult(raw); err == nil {
			t.Error("empty summary accepted")
		}
	})
}

func TestBuildPayloads_CarryInstructions(t *testing.T) {
	snap := testSnapshot()
	for _, task := range All() {
		payload := task.BuildPayload(snap, map[string]map[string]any{})
		instructions, ok := payload["instructions"].(string)
		if !ok || instructions == "" {
			t.Errorf("%s payload has no instructions", task.Name())
		}
	}
}
