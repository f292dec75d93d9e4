// Package metrics computes the deterministic financial summary for one
// transaction set. Everything here is pure arithmetic: no I/O, no model
// calls, no goroutines.
package metrics

import (
	"fmt"
	"math"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// Options carries the caller-supplied inputs that are not part of the
// transaction set itself.
type Options struct {
	// AvailableBalance is the liquid balance proxy used for the liquidity
	// ratio. Defaults to 0 when the ingestion collaborator has no balance.
	AvailableBalance float64
}

// Compute derives all metrics from categorized transactions and debt
// accounts. The returned warnings describe raw ratio values that fell
// outside their declared range and were clamped; they are surfaced on the
// report rather than dropped.
func Compute(txs []domain.Transaction, debts []domain.DebtAccount, opts Options) (domain.Metrics, []string) {
	var warnings []string

	m := domain.Metrics{
		ExpensesByCategory: make(map[string]float64),
		TransactionCount:   len(txs),
	}

	for _, tx := range txs {
		if tx.IsIncome() {
			m.TotalIncome += tx.Amount
			continue
		}
		expense := math.Abs(tx.Amount)
		m.TotalExpenses += expense
		m.ExpensesByCategory[tx.Category] += expense

		switch tx.Classification {
		case domain.ClassificationFixed:
			m.FixedExpenses += expense
		case domain.ClassificationVariable:
			m.VariableExpenses += expense
		default:
			m.DiscretionaryExpenses += expense
		}
	}

	m.NetCashFlow = m.TotalIncome - m.TotalExpenses

	if m.TotalIncome > 0 {
		m.SavingsRate, warnings = clampRatio("savings_rate", m.NetCashFlow/m.TotalIncome*100, warnings)

		monthlyIncome := m.TotalIncome / periodMonths(txs)
		if monthlyIncome > 0 {
			raw := monthlyMinimumPayments(debts) / monthlyIncome * 100
			m.DebtToIncomeRatio, warnings = clampRatio("debt_to_income_ratio", raw, warnings)
		}
	}

	if m.TotalExpenses > 0 {
		m.DiscretionaryRatio, warnings = clampRatio("discretionary_ratio", m.DiscretionaryExpenses/m.TotalExpenses*100, warnings)
	}

	m.ExpenseVolatility = expenseVolatility(txs)

	if avgMonthly := m.TotalExpenses / periodMonths(txs); avgMonthly > 0 {
		m.LiquidityRatio = opts.AvailableBalance / avgMonthly
		if m.LiquidityRatio < 0 {
			warnings = append(warnings, fmt.Sprintf("liquidity_ratio out of range: %.2f, clamped to 0", m.LiquidityRatio))
			m.LiquidityRatio = 0
		}
	}

	m.RecurringCharges = DetectRecurring(txs)

	return m, warnings
}

// periodMonths estimates how many months of activity the transaction set
// spans, never less than one, so per-month figures stay defined for short
// statements.
func periodMonths(txs []domain.Transaction) float64 {
	if len(txs) == 0 {
		return 1
	}

	minDate, maxDate := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(minDate) {
			minDate = tx.Date
		}
		if tx.Date.After(maxDate) {
			maxDate = tx.Date
		}
	}

	days := maxDate.Sub(minDate).Hours() / 24
	months := days / 30.44
	if months < 1 {
		return 1
	}
	return months
}

func monthlyMinimumPayments(debts []domain.DebtAccount) float64 {
	var total float64
	for _, d := range debts {
		total += d.MinimumPayment
	}
	return total
}

// expenseVolatility is the population standard deviation of expense totals
// bucketed by calendar day. Fewer than two buckets means volatility is
// undefined and reported as 0.
func expenseVolatility(txs []domain.Transaction) float64 {
	daily := make(map[string]float64)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		day := tx.Date.Format("2006-01-02")
		daily[day] += math.Abs(tx.Amount)
	}

	if len(daily) < 2 {
		return 0
	}

	var sum float64
	for _, v := range daily {
		sum += v
	}
	mean := sum / float64(len(daily))

	var sumSq float64
	for _, v := range daily {
		d := v - mean
		sumSq += d * d
	}

	return math.Sqrt(sumSq / float64(len(daily)))
}

// clampRatio forces a percentage into [0,100] and records a warning when
// the raw value was outside it.
func clampRatio(name string, raw float64, warnings []string) (float64, []string) {
	switch {
	case math.IsNaN(raw):
		return 0, append(warnings, fmt.Sprintf("%s is not a number, reported as 0", name))
	case raw < 0:
		return 0, append(warnings, fmt.Sprintf("%s out of range: %.2f, clamped to 0", name, raw))
	case raw > 100:
		return 100, append(warnings, fmt.Sprintf("%s out of range: %.2f, clamped to 100", name, raw))
	}
	return raw, warnings
}
