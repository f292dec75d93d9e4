// Package snapshot assembles the immutable per-run view that every
// analysis task reads.
package snapshot

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// Build assembles categorized transactions, computed metrics and debt
// accounts into one Snapshot. It copies its slice inputs so later changes
// by the caller cannot leak into a running analysis, orders transactions by
// date, and assigns every transaction and debt account an ID stable for the
// lifetime of the run.
func Build(txs []domain.Transaction, debts []domain.DebtAccount, m domain.Metrics) *domain.Snapshot {
	ordered := make([]domain.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	for i := range ordered {
		if ordered[i].ID == "" {
			ordered[i].ID = uuid.NewString()
		}
	}

	accounts := make([]domain.DebtAccount, len(debts))
	copy(accounts, debts)
	for i := range accounts {
		if accounts[i].AccountID == "" {
			accounts[i].AccountID = uuid.NewString()
		}
	}

	return &domain.Snapshot{
		AnalysisID:   uuid.NewString(),
		CreatedAt:    time.Now().UTC(),
		Transactions: ordered,
		DebtAccounts: accounts,
		Metrics:      m,
	}
}
