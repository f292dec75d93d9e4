package domain

import (
	"time"
)

// Classification buckets an expense for budgeting purposes. Income is its
// own bucket so positive transactions never count toward spending totals.
type Classification string

const (
	ClassificationFixed         Classification = "fixed"
	ClassificationVariable      Classification = "variable"
	ClassificationDiscretionary Classification = "discretionary"
	ClassificationIncome        Classification = "income"
)

// Transaction represents one normalized transaction from the ingestion
// collaborator. Amount is signed: positive for money IN, negative for money
// OUT. Category and Classification stay empty until the categorizer has run.
type Transaction struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`        // parsed from "date" (YYYY-MM-DD)
	Description string    `json:"description"` // from "description"
	Amount      float64   `json:"amount"`      // signed; zero is invalid

	Category       string         `json:"category,omitempty"`
	Classification Classification `json:"classification,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"` // [0,1]
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool {
	return t.Amount > 0
}
