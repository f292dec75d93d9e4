package domain

import (
	"time"
)

// Snapshot is the single shared input to every analysis task for one run.
// It is built once, after validation passes, and must never be mutated
// afterwards: every task reads the same value, which is what lets the
// executor run tasks concurrently without read coordination.
type Snapshot struct {
	AnalysisID   string        `json:"analysis_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Transactions []Transaction `json:"transactions"` // ordered by date
	DebtAccounts []DebtAccount `json:"debt_accounts"`
	Metrics      Metrics       `json:"metrics"`
}

// SnapshotSummary is the condensed view of a Snapshot embedded in the final
// report for the API/UI collaborator.
type SnapshotSummary struct {
	TransactionCount  int     `json:"transaction_count"`
	DebtAccountCount  int     `json:"debt_account_count"`
	TotalIncome       float64 `json:"total_income"`
	TotalExpenses     float64 `json:"total_expenses"`
	NetCashFlow       float64 `json:"net_cash_flow"`
	SavingsRate       float64 `json:"savings_rate"`
	TotalDebt         float64 `json:"total_debt"`
	DebtToIncomeRatio float64 `json:"debt_to_income_ratio"`
}

// Summary condenses the snapshot for the report envelope.
func (s *Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		TransactionCount:  len(s.Transactions),
		DebtAccountCount:  len(s.DebtAccounts),
		TotalIncome:       s.Metrics.TotalIncome,
		TotalExpenses:     s.Metrics.TotalExpenses,
		NetCashFlow:       s.Metrics.NetCashFlow,
		SavingsRate:       s.Metrics.SavingsRate,
		TotalDebt:         TotalDebtBalance(s.DebtAccounts),
		DebtToIncomeRatio: s.Metrics.DebtToIncomeRatio,
	}
}
