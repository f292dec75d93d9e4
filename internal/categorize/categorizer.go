// Package categorize assigns a category and a fixed/variable/discretionary
// classification to each transaction using deterministic keyword rules.
// It never calls out to a model and never fails: input that matches nothing
// is a category ("Other"), not an error.
package categorize

import (
	"strings"
	"unicode"

	"github.com/dvloznov/finance-insight/internal/domain"
)

const (
	// matchedConfidence is assigned when a keyword rule matched.
	matchedConfidence = 0.9
	// fallbackConfidence is assigned to unmatched transactions.
	fallbackConfidence = 0.3
)

// Normalize lowercases a description, replaces punctuation with spaces and
// collapses whitespace runs, so rule keywords match regardless of the
// formatting quirks of the source statement.
func Normalize(description string) string {
	var b strings.Builder
	b.Grow(len(description))

	lastSpace := true
	for _, r := range strings.ToLower(description) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		// Punctuation and whitespace both collapse into a single space.
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// Categorize returns a copy of the transaction with category,
// classification and confidence set. Already-categorized input produces the
// identical result: the output depends only on description and amount.
func Categorize(tx domain.Transaction) domain.Transaction {
	normalized := Normalize(tx.Description)

	for _, r := range rules {
		if r.creditOnly && tx.Amount <= 0 {
			continue
		}
		if matchesAny(normalized, r.keywords) {
			tx.Category = r.category
			tx.Classification = classificationFor(r, tx.Amount)
			tx.Confidence = matchedConfidence
			return tx
		}
	}

	tx.Category = DefaultCategory
	if tx.Amount > 0 {
		tx.Classification = domain.ClassificationIncome
	} else {
		tx.Classification = domain.ClassificationDiscretionary
	}
	tx.Confidence = fallbackConfidence
	return tx
}

// All categorizes every transaction in order and returns a new slice; the
// input is left untouched.
func All(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = Categorize(tx)
	}
	return out
}

// classificationFor keeps inflows out of the spending buckets: a positive
// amount that matched an expense rule (e.g. a merchant refund) still
// classifies as income.
func classificationFor(r rule, amount float64) domain.Classification {
	if amount > 0 {
		return domain.ClassificationIncome
	}
	return r.classification
}

func matchesAny(normalized string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}
