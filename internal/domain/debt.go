package domain

// DebtAccount is a credit card, loan, or other liability supplied alongside
// the transaction set. CreditLimit is nil for accounts that have none
// (e.g. a personal loan).
type DebtAccount struct {
	AccountID   string `json:"account_id"`
	AccountType string `json:"account_type"` // Credit Card, Loan, Mortgage, Line of Credit
	AccountName string `json:"account_name,omitempty"`

	CurrentBalance float64  `json:"current_balance"`
	CreditLimit    *float64 `json:"credit_limit,omitempty"`

	APR            float64 `json:"apr"` // annual percentage rate, [0,100]
	MinimumPayment float64 `json:"minimum_payment"`
}

// UtilizationRate returns current_balance / credit_limit as a percentage,
// or nil when the account has no credit limit.
func (d DebtAccount) UtilizationRate() *float64 {
	if d.CreditLimit == nil || *d.CreditLimit <= 0 {
		return nil
	}
	rate := d.CurrentBalance / *d.CreditLimit * 100
	return &rate
}

// AvailableCredit returns credit_limit - current_balance, or nil when the
// account has no credit limit.
func (d DebtAccount) AvailableCredit() *float64 {
	if d.CreditLimit == nil {
		return nil
	}
	avail := *d.CreditLimit - d.CurrentBalance
	return &avail
}

// TotalDebtBalance sums the current balances of a set of accounts.
func TotalDebtBalance(accounts []DebtAccount) float64 {
	var total float64
	for _, a := range accounts {
		total += a.CurrentBalance
	}
	return total
}
