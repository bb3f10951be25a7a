package api

import (
	"github.com/expenso-dev/expenso/internal/ledger"
	"github.com/expenso-dev/expenso/internal/model"
)

const dateFormat = "2006-01-02"

type transactionView struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	Amount          string `json:"amount"`
	Type            string `json:"type"`
	TypeName        string `json:"type_name"`
	Date            string `json:"date"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Source          string `json:"source"`
}

func newTransactionView(t model.Transaction) transactionView {
	return transactionView{
		ID:              t.ID,
		Description:     t.Description,
		Amount:          t.Amount.StringFixed(2),
		Type:            string(t.Type),
		TypeName:        t.Type.DisplayName(),
		Date:            t.Date.Format(dateFormat),
		ReferenceNumber: t.ReferenceNumber,
		Source:          t.Source,
	}
}

func transactionViews(txns []model.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		out = append(out, newTransactionView(t))
	}
	return out
}

type expenseView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

func expenseViews(expenses []model.Expense) []expenseView {
	out := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseView{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount.StringFixed(2),
			Category:    string(e.Category),
			Date:        e.Date.Format(dateFormat),
		})
	}
	return out
}

type categoryView struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Count    int    `json:"count"`
}

type summaryView struct {
	Month      string         `json:"month"`
	Total      string         `json:"total"`
	Count      int            `json:"count"`
	ByCategory []categoryView `json:"by_category"`
	Budget     string         `json:"budget,omitempty"`
	Remaining  string         `json:"remaining,omitempty"`
}

func newSummaryView(month string, s ledger.Summary) summaryView {
	v := summaryView{
		Month:      month,
		Total:      s.Total.StringFixed(2),
		Count:      s.Count,
		ByCategory: make([]categoryView, 0, len(s.ByCategory)),
	}
	for _, ct := range s.ByCategory {
		v.ByCategory = append(v.ByCategory, categoryView{
			Category: string(ct.Category),
			Name:     ct.Category.DisplayName(),
			Amount:   ct.Amount.StringFixed(2),
			Count:    ct.Count,
		})
	}
	return v
}
