// Package validate holds the two validation passes of the analysis
// pipeline: the structural pre-check that gates the run, and the post-check
// that inspects aggregated task outputs for inconsistencies and conflicts.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// ValidationError is the fatal pre-run rejection. The run never proceeds to
// the snapshot builder or any task when the input fails the pre-check.
type ValidationError struct {
	Errs []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("input validation failed: %s", strings.Join(e.Errs, "; "))
}

// PreCheck validates raw transactions and debt accounts before anything
// else runs. It returns nil when the input is structurally sound, otherwise
// a *ValidationError listing every defect found.
func PreCheck(txs []domain.Transaction, debts []domain.DebtAccount, now time.Time) *ValidationError {
	var errs []string

	if len(txs) == 0 {
		errs = append(errs, "no transactions found")
	}

	for i, tx := range txs {
		if tx.Date.IsZero() {
			errs = append(errs, fmt.Sprintf("transaction %d: missing date", i))
		} else if tx.Date.After(now) {
			errs = append(errs, fmt.Sprintf("transaction %d: date %s is in the future", i, tx.Date.Format("2006-01-02")))
		}
		if tx.Description == "" {
			errs = append(errs, fmt.Sprintf("transaction %d: missing description", i))
		}
		if tx.Amount == 0 {
			errs = append(errs, fmt.Sprintf("transaction %d: amount must not be zero", i))
		}
	}

	for i, d := range debts {
		if d.AccountType == "" {
			errs = append(errs, fmt.Sprintf("debt account %d: missing account_type", i))
		}
		if d.CurrentBalance < 0 {
			errs = append(errs, fmt.Sprintf("debt account %d: current_balance %.2f is negative", i, d.CurrentBalance))
		}
		if d.CreditLimit != nil && *d.CreditLimit < d.CurrentBalance {
			errs = append(errs, fmt.Sprintf("debt account %d: credit_limit %.2f is below current_balance %.2f", i, *d.CreditLimit, d.CurrentBalance))
		}
		if d.APR < 0 || d.APR > 100 {
			errs = append(errs, fmt.Sprintf("debt account %d: apr %.2f outside [0,100]", i, d.APR))
		}
		if d.MinimumPayment < 0 {
			errs = append(errs, fmt.Sprintf("debt account %d: minimum_payment %.2f is negative", i, d.MinimumPayment))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}
	return nil
}
