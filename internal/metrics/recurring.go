package metrics

import (
	"math"
	"sort"

	"github.com/dvloznov/finance-insight/internal/categorize"
	"github.com/dvloznov/finance-insight/internal/domain"
)

const (
	// minOccurrences is how many times a charge must repeat before it
	// counts as recurring.
	minOccurrences = 3
	// amountTolerance is the maximum relative deviation from the group
	// mean for the amounts to count as "the same charge".
	amountTolerance = 0.05
)

// cadence bands in days between consecutive occurrences. Every consecutive
// delta in a group must fall inside the same band.
var cadenceBands = []struct {
	cadence  domain.Cadence
	min, max float64
}{
	{domain.CadenceWeekly, 6, 8},
	{domain.CadenceMonthly, 27, 33},
}

// DetectRecurring groups expense transactions by normalized description and
// reports the groups that repeat with a stable amount on a weekly or
// monthly cadence. Output order is deterministic: descending average
// amount, then description.
func DetectRecurring(txs []domain.Transaction) []domain.RecurringCharge {
	groups := make(map[string][]domain.Transaction)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		key := categorize.Normalize(tx.Description)
		if len(key) < 3 {
			continue
		}
		groups[key] = append(groups[key], tx)
	}

	var out []domain.RecurringCharge
	for desc, group := range groups {
		if len(group) < minOccurrences {
			continue
		}

		sort.Slice(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

		avg := averageAbsAmount(group)
		if !amountsStable(group, avg) {
			continue
		}

		cadence, ok := detectCadence(group)
		if !ok {
			continue
		}

		out = append(out, domain.RecurringCharge{
			Description:   desc,
			Cadence:       cadence,
			AverageAmount: avg,
			Occurrences:   len(group),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageAmount != out[j].AverageAmount {
			return out[i].AverageAmount > out[j].AverageAmount
		}
		return out[i].Description < out[j].Description
	})

	return out
}

func averageAbsAmount(group []domain.Transaction) float64 {
	var sum float64
	for _, tx := range group {
		sum += math.Abs(tx.Amount)
	}
	return sum / float64(len(group))
}

func amountsStable(group []domain.Transaction, avg float64) bool {
	if avg <= 0 {
		return false
	}
	for _, tx := range group {
		if math.Abs(math.Abs(tx.Amount)-avg)/avg > amountTolerance {
			return false
		}
	}
	return true
}

// detectCadence checks that all consecutive date deltas fall in one cadence
// band. Occurrences on the same day (duplicate charges) disqualify the group.
func detectCadence(group []domain.Transaction) (domain.Cadence, bool) {
	deltas := make([]float64, 0, len(group)-1)
	for i := 1; i < len(group); i++ {
		deltas = append(deltas, group[i].Date.Sub(group[i-1].Date).Hours()/24)
	}

	for _, band := range cadenceBands {
		all := true
		for _, d := range deltas {
			if d < band.min || d > band.max {
				all = false
				break
			}
		}
		if all {
			return band.cadence, true
		}
	}

	return "", false
}
