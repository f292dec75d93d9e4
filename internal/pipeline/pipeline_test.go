package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insight/internal/categorize"
	"github.com/dvloznov/finance-insight/internal/domain"
	"github.com/dvloznov/finance-insight/internal/metrics"
	"github.com/dvloznov/finance-insight/internal/reasoner"
	"github.com/dvloznov/finance-insight/internal/taskgraph"
	"github.com/dvloznov/finance-insight/internal/tasks"
	"github.com/dvloznov/finance-insight/internal/validate"
)

var analyzeTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func validInput() Input {
	return Input{
		Transactions: []domain.Transaction{
			{Date: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), Description: "ACME PAYROLL SALARY", Amount: 4000},
			{Date: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), Description: "RENT PAYMENT", Amount: -1500},
			{Date: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), Description: "WHOLE FOODS MARKET", Amount: -220},
		},
		DebtAccounts: []domain.DebtAccount{
			{AccountID: "cc-1", AccountType: "credit_card", CurrentBalance: 2000, CreditLimit: floatPtr(6000), APR: 22.9, MinimumPayment: 60},
		},
		AvailableBalance: 5000,
	}
}

// cannedReasoner answers every task with a schema-valid payload, with
// per-task overrides for failure injection.
func cannedReasoner(overrides map[string]func() (map[string]any, error)) reasoner.Reasoner {
	return reasoner.Func(func(ctx context.Context, task string, payload map[string]any) (map[string]any, error) {
		if f, ok := overrides[task]; ok {
			return f()
		}
		switch task {
		case tasks.TaskDebt:
			return map[string]any{
				"total_debt":                  2000.0,
				"high_interest_debt":          2000.0,
				"payoff_strategy":             "Avalanche",
				"priority_accounts":           []any{"cc-1"},
				"months_to_payoff":            12.0,
				"total_interest_paid":         240.0,
				"recommended_monthly_payment": 190.0,
				"monthly_allocation":          190.0,
				"recommendations":             []any{"a"},
			}, nil
		case tasks.TaskSavings:
			return map[string]any{
				"monthly_savings_capacity": 900.0,
				"emergency_fund_target":    10320.0,
				"monthly_savings_goal":     450.0,
				"months_to_emergency_fund": 23.0,
				"current_savings_rate":     57.0,
				"recommendations":          []any{"a"},
			}, nil
		case tasks.TaskBudget:
			return map[string]any{
				"overspending_categories":   []any{},
				"recommended_budget":        map[string]any{"Housing": 1500.0, "Food & Dining": 250.0},
				"disposable_income":         2280.0,
				"monthly_savings_potential": 450.0,
				"recommendations":           []any{"a"},
			}, nil
		case tasks.TaskRisk:
			return map[string]any{
				"overall_score":         40.0,
				"risk_level":            "Medium",
				"debt_risk_score":       55.0,
				"savings_risk_score":    30.0,
				"volatility_risk_score": 35.0,
				"liquidity_risk_score":  25.0,
				"top_priorities":        []any{"pay down cc-1"},
				"summary":               "Manageable position.",
			}, nil
		case tasks.TaskScenario:
			return map[string]any{
				"scenarios": []any{
					map[string]any{
						"name":                   "extra 100 to debt",
						"monthly_delta":          -100.0,
						"projected_savings_rate": 54.0,
						"months_to_goal":         25.0,
					},
				},
				"summary": "Small reallocations shorten the payoff.",
			}, nil
		}
		return nil, fmt.Errorf("unknown task %q", task)
	})
}

func newTestPipeline(r reasoner.Reasoner) *Pipeline {
	p := New(r, taskgraph.Config{}, zerolog.Nop())
	p.now = func() time.Time { return analyzeTime }
	return p
}

func TestAnalyze_CompleteRun(t *testing.T) {
	p := newTestPipeline(cannedReasoner(nil))

	report, err := p.Analyze(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Status != domain.RunStatusComplete {
		t.Errorf("status = %s, want %s", report.Status, domain.RunStatusComplete)
	}
	if report.AnalysisID == "" {
		t.Error("report has no analysis ID")
	}
	if len(report.Tasks) != len(tasks.DeclaredOrder) {
		t.Errorf("report has %d task entries, want %d", len(report.Tasks), len(tasks.DeclaredOrder))
	}
	for _, name := range tasks.DeclaredOrder {
		payload, ok := report.Tasks[name]
		if !ok {
			t.Errorf("task %s missing from report", name)
			continue
		}
		if payload == nil {
			t.Errorf("task %s payload is nil on a complete run", name)
		}
	}
	if report.SnapshotSummary.TransactionCount != 3 {
		t.Errorf("snapshot summary transaction count = %d, want 3", report.SnapshotSummary.TransactionCount)
	}
	if len(report.Errors) != 0 {
		t.Errorf("unexpected errors: %v", report.Errors)
	}
	if !report.GeneratedAt.Equal(analyzeTime) {
		t.Errorf("generated at = %v, want %v", report.GeneratedAt, analyzeTime)
	}
}

func TestAnalyze_CleanRunMarshalsEmptyArrays(t *testing.T) {
	p := newTestPipeline(cannedReasoner(nil))

	report, err := p.Analyze(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if strings.Contains(string(data), `"warnings":null`) {
		t.Error("warnings marshal as null, want []")
	}
	if strings.Contains(string(data), `"errors":null`) {
		t.Error("errors marshal as null, want []")
	}
	if !strings.Contains(string(data), `"errors":[]`) {
		t.Errorf("errors missing from a clean run's JSON: %s", data)
	}
}

func TestAnalyze_PayrollRentSubscriptionExample(t *testing.T) {
	input := Input{
		Transactions: []domain.Transaction{
			{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "Payroll", Amount: 5000},
			{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Description: "Rent", Amount: -1500},
			{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Description: "Netflix", Amount: -300},
			{Date: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), Description: "Netflix", Amount: -300},
			{Date: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), Description: "Netflix", Amount: -300},
		},
	}

	// The deterministic half of the run, checked directly since the report
	// carries only the condensed summary.
	m, warnings := metrics.Compute(categorize.All(input.Transactions), nil, metrics.Options{})
	if m.TotalIncome != 5000 {
		t.Errorf("TotalIncome = %v, want 5000", m.TotalIncome)
	}
	if m.TotalExpenses != 2400 {
		t.Errorf("TotalExpenses = %v, want 2400", m.TotalExpenses)
	}
	if m.NetCashFlow != 2600 {
		t.Errorf("NetCashFlow = %v, want 2600", m.NetCashFlow)
	}
	if m.SavingsRate != 52 {
		t.Errorf("SavingsRate = %v, want 52", m.SavingsRate)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	if len(m.RecurringCharges) != 1 {
		t.Fatalf("got %d recurring groups, want the subscription alone: %v", len(m.RecurringCharges), m.RecurringCharges)
	}
	rec := m.RecurringCharges[0]
	if rec.Description != "netflix" || rec.Cadence != domain.CadenceMonthly {
		t.Errorf("recurring group = %s/%s, want netflix/monthly", rec.Description, rec.Cadence)
	}
	if rec.Occurrences != 3 || rec.AverageAmount != 300 {
		t.Errorf("recurring group on %d occurrences averaging %v, want 3 at 300", rec.Occurrences, rec.AverageAmount)
	}

	// The same numbers must reach the report summary through the full run.
	p := newTestPipeline(cannedReasoner(nil))
	report, err := p.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	s := report.SnapshotSummary
	if s.TotalIncome != 5000 || s.TotalExpenses != 2400 || s.NetCashFlow != 2600 || s.SavingsRate != 52 {
		t.Errorf("summary = %+v, want 5000/2400/2600/52", s)
	}
	if s.TransactionCount != 5 {
		t.Errorf("TransactionCount = %d, want 5", s.TransactionCount)
	}
}

func TestAnalyze_PreCheckRejects(t *testing.T) {
	p := newTestPipeline(cannedReasoner(nil))

	input := validInput()
	input.Transactions[1].Amount = 0

	report, err := p.Analyze(context.Background(), input)
	if report != nil {
		t.Error("got a report for rejected input")
	}

	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *validate.ValidationError", err)
	}
	if len(verr.Errs) == 0 {
		t.Error("validation error lists no defects")
	}
}

func TestAnalyze_PartialOnTaskFailure(t *testing.T) {
	p := newTestPipeline(cannedReasoner(map[string]func() (map[string]any, error){
		tasks.TaskRisk: func() (map[string]any, error) {
			return nil, errors.New("reasoner unavailable")
		},
	}))

	report, err := p.Analyze(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Status != domain.RunStatusPartial {
		t.Errorf("status = %s, want %s", report.Status, domain.RunStatusPartial)
	}
	if report.Tasks[tasks.TaskRisk] != nil {
		t.Error("failed task has a non-nil payload")
	}
	if report.Tasks[tasks.TaskDebt] == nil {
		t.Error("debt payload lost to an unrelated failure")
	}
	found := false
	for _, e := range report.Errors {
		if strings.Contains(e, tasks.TaskRisk) {
			found = true
		}
	}
	if !found {
		t.Errorf("report errors %v do not mention the failed task", report.Errors)
	}
}

func TestAnalyze_FailedWhenNothingSucceeds(t *testing.T) {
	down := func() (map[string]any, error) { return nil, errors.New("reasoner down") }
	overrides := make(map[string]func() (map[string]any, error))
	for _, name := range tasks.DeclaredOrder {
		overrides[name] = down
	}
	p := newTestPipeline(cannedReasoner(overrides))

	report, err := p.Analyze(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Status != domain.RunStatusFailed {
		t.Errorf("status = %s, want %s", report.Status, domain.RunStatusFailed)
	}
	for _, name := range tasks.DeclaredOrder {
		if report.Tasks[name] != nil {
			t.Errorf("task %s has a payload on a failed run", name)
		}
	}
	if len(report.Errors) != len(tasks.DeclaredOrder) {
		t.Errorf("got %d errors, want one per task: %v", len(report.Errors), report.Errors)
	}
}

func TestAnalyze_ConflictSurfacesAsWarning(t *testing.T) {
	// Savings goal plus debt allocation exceed the budget task's
	// disposable income.
	p := newTestPipeline(cannedReasoner(map[string]func() (map[string]any, error){
		tasks.TaskBudget: func() (map[string]any, error) {
			return map[string]any{
				"overspending_categories":   []any{},
				"recommended_budget":        map[string]any{"Housing": 1500.0},
				"disposable_income":         100.0,
				"monthly_savings_potential": 50.0,
				"recommendations":           []any{"a"},
			}, nil
		},
	}))

	report, err := p.Analyze(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Status != domain.RunStatusComplete {
		t.Errorf("status = %s, want %s (conflicts are warnings, not failures)", report.Status, domain.RunStatusComplete)
	}
	found := false
	for _, w := range report.Warnings {
		if strings.Contains(w, "disposable income") || strings.Contains(w, "exceed") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %v do not surface the allocation conflict", report.Warnings)
	}
}
