package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of spending categories for ledger expenses.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategoryHealthcare    Category = "healthcare"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealthcare,
	CategoryEducation,
	CategoryOther,
}

var categoryNames = map[Category]string{
	CategoryFood:          "Food",
	CategoryTransport:     "Transport",
	CategoryShopping:      "Shopping",
	CategoryEntertainment: "Entertainment",
	CategoryBills:         "Bills",
	CategoryHealthcare:    "Healthcare",
	CategoryEducation:     "Education",
	CategoryOther:         "Other",
}

// DisplayName returns the capitalized category name.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[CategoryOther]
}

// ParseCategory maps a name such as "Food" or "food" to a Category.
// Unknown names map to CategoryOther.
func ParseCategory(name string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := categoryNames[c]; ok {
		return c
	}
	return CategoryOther
}

// Expense is a ledger-facing record derived from a Transaction.
type Expense struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Category    Category
	Date        time.Time
}
