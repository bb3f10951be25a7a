package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenso-dev/expenso/internal/model"
)

// CategoryTotal is the spend and expense count for one category.
type CategoryTotal struct {
	Category model.Category  `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// Summary aggregates a set of expenses.
type Summary struct {
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// Summarize totals expenses overall and per category. Categories with no
// expenses are omitted; the rest follow model.Categories order.
func Summarize(expenses []model.Expense) Summary {
	sums := make(map[model.Category]CategoryTotal)
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
		ct := sums[e.Category]
		ct.Amount = ct.Amount.Add(e.Amount)
		ct.Count++
		sums[e.Category] = ct
	}

	s := Summary{Total: total, Count: len(expenses)}
	for _, c := range model.Categories {
		ct, ok := sums[c]
		if !ok {
			continue
		}
		ct.Category = c
		s.ByCategory = append(s.ByCategory, ct)
	}
	return s
}

// Remaining returns budget minus spent. A zero budget means no budget is
// set and ok is false.
func Remaining(budget, spent decimal.Decimal) (decimal.Decimal, bool) {
	if budget.IsZero() {
		return decimal.Zero, false
	}
	return budget.Sub(spent), true
}

// InMonth filters expenses to those dated in year/month.
func InMonth(expenses []model.Expense, year, month int) []model.Expense {
	var out []model.Expense
	for _, e := range expenses {
		if e.Date.Year() == year && e.Date.Month() == time.Month(month) {
			out = append(out, e)
		}
	}
	return out
}

// InCategory filters expenses to one category.
func InCategory(expenses []model.Expense, c model.Category) []model.Expense {
	var out []model.Expense
	for _, e := range expenses {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// MonthFormat is the layout of month values, e.g. "2024-03".
const MonthFormat = "2006-01"

var errBadMonth = errors.New("month must look like 2024-03")

// ParseMonth parses a YYYY-MM value.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, errBadMonth)
	}
	return t, nil
}
