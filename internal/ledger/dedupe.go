package ledger

import "github.com/expenso-dev/expenso/internal/model"

type dedupeKey struct {
	date        string
	amount      string
	description string
}

func keyOf(e model.Expense) dedupeKey {
	return dedupeKey{
		date:        e.Date.Format(dateFormat),
		amount:      e.Amount.StringFixed(2),
		description: e.Description,
	}
}

// Deduplicate returns the incoming expenses whose date, amount and
// description are not already in existing. Repeats within incoming are kept.
func Deduplicate(existing, incoming []model.Expense) []model.Expense {
	seen := make(map[dedupeKey]bool, len(existing))
	for _, e := range existing {
		seen[keyOf(e)] = true
	}

	var out []model.Expense
	for _, e := range incoming {
		if seen[keyOf(e)] {
			continue
		}
		out = append(out, e)
	}
	return out
}
