package classify

import "github.com/expenso-dev/expenso/internal/model"

// DefaultRules returns the built-in keyword tables.
func DefaultRules() Rules {
	return Rules{
		Types:      defaultTypeRules(),
		Categories: defaultCategoryRules(),
		Sources:    defaultSourceRules(),
	}
}

// UPI is tested before ATM, card and transfer keywords.
func defaultTypeRules() []TypeRule {
	return []TypeRule{
		{Name: "upi", Keywords: []string{"upi", "paytm", "phonepe", "googlepay", "gpay"}, Debit: model.TypeUPISent, Credit: model.TypeUPIReceived},
		{Name: "atm", Keywords: []string{"atm", "cash withdrawal"}, Debit: model.TypeATMWithdrawal, Credit: model.TypeATMWithdrawal},
		{Name: "card", Keywords: []string{"card", "pos", "swipe"}, Debit: model.TypeCardPayment, Credit: model.TypeCardPayment},
		{Name: "transfer", Keywords: []string{"transfer", "neft", "rtgs", "imps"}, Debit: model.TypeBankTransfer, Credit: model.TypeBankTransfer},
	}
}

// Entertainment is tested before Bills so "netflix subscription" is Entertainment.
func defaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: model.CategoryFood, Keywords: []string{"swiggy", "zomato", "restaurant", "food", "cafe", "hotel", "kitchen", "dominos", "mcdonald"}},
		{Category: model.CategoryTransport, Keywords: []string{"uber", "ola", "rapido", "fuel", "petrol", "metro", "bus", "taxi", "auto"}},
		{Category: model.CategoryShopping, Keywords: []string{"amazon", "flipkart", "myntra", "shop", "mall", "store", "retail", "purchase"}},
		{Category: model.CategoryEntertainment, Keywords: []string{"netflix", "prime", "hotstar", "movie", "theater", "cinema", "game", "spotify", "youtube"}},
		{Category: model.CategoryBills, Keywords: []string{"bill", "electricity", "water", "gas", "internet", "mobile", "recharge", "subscription"}},
		{Category: model.CategoryHealthcare, Keywords: []string{"hospital", "doctor", "medical", "pharmacy", "medicine", "clinic", "health"}},
		{Category: model.CategoryEducation, Keywords: []string{"school", "college", "course", "education", "book", "tuition", "udemy", "coursera"}},
	}
}

// Wallets come before banks.
func defaultSourceRules() []SourceRule {
	return []SourceRule{
		{Name: "Google Pay", Keywords: []string{"google pay", "googlepay", "gpay"}},
		{Name: "PhonePe", Keywords: []string{"phonepe"}},
		{Name: "Paytm", Keywords: []string{"paytm"}},
		{Name: "Amazon Pay", Keywords: []string{"amazon pay"}},
		{Name: "SBI", Keywords: []string{"sbi", "state bank"}},
		{Name: "HDFC Bank", Keywords: []string{"hdfc"}},
		{Name: "ICICI Bank", Keywords: []string{"icici"}},
		{Name: "Axis Bank", Keywords: []string{"axis"}},
		{Name: "Kotak Bank", Keywords: []string{"kotak"}},
		{Name: "PNB", Keywords: []string{"pnb"}},
	}
}
