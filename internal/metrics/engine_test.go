package metrics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-insight/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestCompute_IncomeExpensesNet(t *testing.T) {
	txs := []domain.Transaction{
		{Date: day(1), Description: "ACME PAYROLL", Amount: 3000, Category: "Income", Classification: domain.ClassificationIncome},
		{Date: day(2), Description: "RENT", Amount: -1200, Category: "Housing", Classification: domain.ClassificationFixed},
		{Date: day(3), Description: "GROCERY", Amount: -300, Category: "Food & Dining", Classification: domain.ClassificationDiscretionary},
		{Date: day(4), Description: "GAS", Amount: -100, Category: "Transportation", Classification: domain.ClassificationVariable},
	}

	m, warnings := Compute(txs, nil, Options{})

	if m.TotalIncome != 3000 {
		t.Errorf("TotalIncome = %v, want 3000", m.TotalIncome)
	}
	if m.TotalExpenses != 1600 {
		t.Errorf("TotalExpenses = %v, want 1600", m.TotalExpenses)
	}
	if m.NetCashFlow != m.TotalIncome-m.TotalExpenses {
		t.Errorf("NetCashFlow = %v, want income - expenses = %v", m.NetCashFlow, m.TotalIncome-m.TotalExpenses)
	}
	if m.FixedExpenses != 1200 || m.VariableExpenses != 100 || m.DiscretionaryExpenses != 300 {
		t.Errorf("expense split = %v/%v/%v, want 1200/100/300",
			m.FixedExpenses, m.VariableExpenses, m.DiscretionaryExpenses)
	}
	if m.ExpensesByCategory["Housing"] != 1200 {
		t.Errorf("ExpensesByCategory[Housing] = %v, want 1200", m.ExpensesByCategory["Housing"])
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	// Savings rate: (3000-1600)/3000 * 100.
	wantRate := 1400.0 / 3000 * 100
	if math.Abs(m.SavingsRate-wantRate) > 1e-9 {
		t.Errorf("SavingsRate = %v, want %v", m.SavingsRate, wantRate)
	}
}

func TestCompute_RatiosClampedNeverNegativeOrNaN(t *testing.T) {
	tests := []struct {
		name string
		txs  []domain.Transaction
	}{
		{
			name: "expenses exceed income",
			txs: []domain.Transaction{
				{Date: day(1), Description: "PAY", Amount: 100, Classification: domain.ClassificationIncome},
				{Date: day(2), Description: "RENT", Amount: -900, Category: "Housing", Classification: domain.ClassificationFixed},
			},
		},
		{
			name: "no income at all",
			txs: []domain.Transaction{
				{Date: day(1), Description: "RENT", Amount: -900, Category: "Housing", Classification: domain.ClassificationFixed},
			},
		},
		{
			name: "empty set",
			txs:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := Compute(tt.txs, nil, Options{})

			ratios := map[string]float64{
				"savings_rate":         m.SavingsRate,
				"debt_to_income_ratio": m.DebtToIncomeRatio,
				"discretionary_ratio":  m.DiscretionaryRatio,
				"liquidity_ratio":      m.LiquidityRatio,
			}
			for name, v := range ratios {
				if math.IsNaN(v) {
					t.Errorf("%s is NaN", name)
				}
				if v < 0 {
					t.Errorf("%s = %v, want >= 0", name, v)
				}
			}
			if m.SavingsRate > 100 || m.DebtToIncomeRatio > 100 || m.DiscretionaryRatio > 100 {
				t.Errorf("percentage ratio above 100: %+v", ratios)
			}
		})
	}
}

func TestCompute_ClampWarningSurfaced(t *testing.T) {
	// Net cash flow is negative, so the raw savings rate is below zero and
	// must be clamped with a warning.
	txs := []domain.Transaction{
		{Date: day(1), Description: "PAY", Amount: 100, Classification: domain.ClassificationIncome},
		{Date: day(2), Description: "RENT", Amount: -900, Category: "Housing", Classification: domain.ClassificationFixed},
	}

	m, warnings := Compute(txs, nil, Options{})

	if m.SavingsRate != 0 {
		t.Errorf("SavingsRate = %v, want 0 after clamp", m.SavingsRate)
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "savings_rate") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a savings_rate clamp warning, got %v", warnings)
	}
}

func TestCompute_DebtToIncomeRatio(t *testing.T) {
	// One month of activity, 3000 income, 600 of minimum payments: 20%.
	txs := []domain.Transaction{
		{Date: day(1), Description: "PAY", Amount: 3000, Classification: domain.ClassificationIncome},
		{Date: day(15), Description: "RENT", Amount: -1000, Category: "Housing", Classification: domain.ClassificationFixed},
	}
	debts := []domain.DebtAccount{
		{AccountID: "a", AccountType: "credit_card", CurrentBalance: 4000, MinimumPayment: 200},
		{AccountID: "b", AccountType: "loan", CurrentBalance: 12000, MinimumPayment: 400},
	}

	m, _ := Compute(txs, debts, Options{})

	if math.Abs(m.DebtToIncomeRatio-20) > 1e-9 {
		t.Errorf("DebtToIncomeRatio = %v, want 20", m.DebtToIncomeRatio)
	}
}

func TestCompute_LiquidityRatio(t *testing.T) {
	txs := []domain.Transaction{
		{Date: day(1), Description: "RENT", Amount: -1000, Category: "Housing", Classification: domain.ClassificationFixed},
		{Date: day(20), Description: "GROCERY", Amount: -500, Category: "Food & Dining", Classification: domain.ClassificationDiscretionary},
	}

	m, _ := Compute(txs, nil, Options{AvailableBalance: 3000})

	// 1500 of expenses over less than a month counts as one month, so the
	// ratio is 3000 / 1500 = 2 months of cover.
	if math.Abs(m.LiquidityRatio-2) > 1e-9 {
		t.Errorf("LiquidityRatio = %v, want 2", m.LiquidityRatio)
	}
}

func TestExpenseVolatility(t *testing.T) {
	tests := []struct {
		name string
		txs  []domain.Transaction
		want float64
	}{
		{
			name: "fewer than two days is zero",
			txs: []domain.Transaction{
				{Date: day(1), Amount: -50},
				{Date: day(1), Amount: -30},
			},
			want: 0,
		},
		{
			name: "equal daily totals is zero",
			txs: []domain.Transaction{
				{Date: day(1), Amount: -50},
				{Date: day(2), Amount: -50},
			},
			want: 0,
		},
		{
			name: "two days 40 and 60 has stddev 10",
			txs: []domain.Transaction{
				{Date: day(1), Amount: -40},
				{Date: day(2), Amount: -60},
			},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expenseVolatility(tt.txs)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expenseVolatility = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPeriodMonths_NeverBelowOne(t *testing.T) {
	txs := []domain.Transaction{
		{Date: day(1)},
		{Date: day(3)},
	}
	if got := periodMonths(txs); got != 1 {
		t.Errorf("periodMonths = %v, want 1 for a short statement", got)
	}
	if got := periodMonths(nil); got != 1 {
		t.Errorf("periodMonths(nil) = %v, want 1", got)
	}
}
