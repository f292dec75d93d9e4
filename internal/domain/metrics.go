package domain

// Cadence is the detected interval of a recurring charge.
type Cadence string

const (
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// RecurringCharge is a group of similar transactions that repeats on a
// regular interval, e.g. a subscription.
type RecurringCharge struct {
	Description   string  `json:"description"` // normalized description of the group
	Cadence       Cadence `json:"cadence"`
	AverageAmount float64 `json:"average_amount"`
	Occurrences   int     `json:"occurrences"`
}

// Metrics is the deterministic financial summary computed from one
// transaction set plus its debt accounts. All ratios are percentages
// already clamped to their valid ranges.
type Metrics struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetCashFlow   float64 `json:"net_cash_flow"`

	SavingsRate        float64 `json:"savings_rate"`         // [0,100], 0 on zero income
	DebtToIncomeRatio  float64 `json:"debt_to_income_ratio"` // [0,100], 0 on zero income
	LiquidityRatio     float64 `json:"liquidity_ratio"`      // months of expenses covered
	DiscretionaryRatio float64 `json:"discretionary_ratio"`  // [0,100]
	ExpenseVolatility  float64 `json:"expense_volatility"`   // stddev of daily expense totals

	FixedExpenses         float64 `json:"fixed_expenses"`
	VariableExpenses      float64 `json:"variable_expenses"`
	DiscretionaryExpenses float64 `json:"discretionary_expenses"`

	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	RecurringCharges   []RecurringCharge  `json:"recurring_charges"`

	TransactionCount int `json:"transaction_count"`
}
