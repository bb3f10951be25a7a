package ledger

import (
	"github.com/expenso-dev/expenso/internal/classify"
	"github.com/expenso-dev/expenso/internal/id"
	"github.com/expenso-dev/expenso/internal/model"
)

// Converter turns parsed transactions into ledger expenses.
// The zero value categorizes with the built-in rules.
type Converter struct {
	Categories *classify.CategoryClassifier
}

var defaultCategories = classify.DefaultCategoryClassifier()

// ToExpense converts txn into an Expense, or returns false for incoming
// money (CREDIT and UPI_RECEIVED). Each call assigns a fresh expense ID.
func (c *Converter) ToExpense(txn model.Transaction) (model.Expense, bool) {
	if txn.Type == model.TypeCredit || txn.Type == model.TypeUPIReceived {
		return model.Expense{}, false
	}
	categories := c.Categories
	if categories == nil {
		categories = defaultCategories
	}
	return model.Expense{
		ID:          id.New(id.PrefixExpense),
		Description: txn.Description,
		Amount:      txn.Amount,
		Category:    categories.Categorize(txn.Description),
		Date:        txn.Date,
	}, true
}

// ToExpenses converts every eligible transaction, preserving order.
func (c *Converter) ToExpenses(txns []model.Transaction) []model.Expense {
	var out []model.Expense
	for _, txn := range txns {
		if e, ok := c.ToExpense(txn); ok {
			out = append(out, e)
		}
	}
	return out
}
