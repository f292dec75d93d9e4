package categorize

import (
	"testing"
	"time"

	"github.com/dvloznov/finance-insight/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "STARBUCKS", "starbucks"},
		{"punctuation to space", "PAYMENT*TO:CHASE", "payment to chase"},
		{"collapse runs", "NETFLIX   .COM  ", "netflix com"},
		{"digits kept", "SHELL OIL 5742", "shell oil 5742"},
		{"empty", "", ""},
		{"only punctuation", "***---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name               string
		description        string
		amount             float64
		wantCategory       string
		wantClassification domain.Classification
		wantConfidence     float64
	}{
		{
			name:               "salary is income",
			description:        "ACME CORP PAYROLL",
			amount:             3200,
			wantCategory:       "Income",
			wantClassification: domain.ClassificationIncome,
			wantConfidence:     0.9,
		},
		{
			name:               "rent is fixed housing",
			description:        "RENT PAYMENT APT 4B",
			amount:             -1500,
			wantCategory:       "Housing",
			wantClassification: domain.ClassificationFixed,
			wantConfidence:     0.9,
		},
		{
			name:               "netflix is a subscription before entertainment",
			description:        "NETFLIX.COM",
			amount:             -15.99,
			wantCategory:       "Subscriptions",
			wantClassification: domain.ClassificationFixed,
			wantConfidence:     0.9,
		},
		{
			name:               "grocery is discretionary dining",
			description:        "WHOLE FOODS MARKET",
			amount:             -82.45,
			wantCategory:       "Food & Dining",
			wantClassification: domain.ClassificationDiscretionary,
			wantConfidence:     0.9,
		},
		{
			name:               "credit card payment before fees",
			description:        "CHASE CREDIT CARD PAYMENT",
			amount:             -400,
			wantCategory:       "Debt Payments",
			wantClassification: domain.ClassificationFixed,
			wantConfidence:     0.9,
		},
		{
			name:               "unmatched debit falls back to Other discretionary",
			description:        "ZZYZX LLC",
			amount:             -12,
			wantCategory:       DefaultCategory,
			wantClassification: domain.ClassificationDiscretionary,
			wantConfidence:     0.3,
		},
		{
			name:               "unmatched credit falls back to Other income",
			description:        "ZZYZX LLC",
			amount:             12,
			wantCategory:       DefaultCategory,
			wantClassification: domain.ClassificationIncome,
			wantConfidence:     0.3,
		},
		{
			name:               "positive amount on expense rule classifies as income",
			description:        "AMAZON REFUND",
			amount:             34.99,
			wantCategory:       "Income",
			wantClassification: domain.ClassificationIncome,
			wantConfidence:     0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(domain.Transaction{
				Description: tt.description,
				Amount:      tt.amount,
			})

			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Classification != tt.wantClassification {
				t.Errorf("Classification = %q, want %q", got.Classification, tt.wantClassification)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestCategorize_CreditOnlyRuleSkippedForDebits(t *testing.T) {
	// "deposit" is an Income keyword but the rule is credit-only; a debit
	// containing it must not land in Income.
	got := Categorize(domain.Transaction{
		Description: "SECURITY DEPOSIT",
		Amount:      -500,
	})

	if got.Category == "Income" {
		t.Errorf("credit-only rule matched a debit: category = %q", got.Category)
	}
}

func TestCategorize_Idempotent(t *testing.T) {
	tx := domain.Transaction{
		Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "SPOTIFY USA",
		Amount:      -10.99,
	}

	once := Categorize(tx)
	twice := Categorize(once)

	if once != twice {
		t.Errorf("Categorize is not idempotent:\nonce  = %+v\ntwice = %+v", once, twice)
	}
}

func TestAll_DoesNotMutateInput(t *testing.T) {
	in := []domain.Transaction{
		{Description: "STARBUCKS", Amount: -4.50},
		{Description: "ACME PAYROLL", Amount: 2000},
	}

	out := All(in)

	if len(out) != len(in) {
		t.Fatalf("All returned %d transactions, want %d", len(out), len(in))
	}
	for i, tx := range in {
		if tx.Category != "" {
			t.Errorf("input[%d] was mutated: category = %q", i, tx.Category)
		}
	}
	for i, tx := range out {
		if tx.Category == "" {
			t.Errorf("output[%d] has no category", i)
		}
	}
}
