package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenso-dev/expenso/internal/model"
)

func TestTypeClassifier_Classify(t *testing.T) {
	c := DefaultTypeClassifier()
	tests := []struct {
		desc    string
		isDebit bool
		want    model.TransactionType
	}{
		{"UPI/123/SWIGGY", true, model.TypeUPISent},
		{"UPI/123/SWIGGY", false, model.TypeUPIReceived},
		{"Paid via PhonePe", true, model.TypeUPISent},
		{"GPAY to Ravi", true, model.TypeUPISent},
		{"ATM WDL MG ROAD", true, model.TypeATMWithdrawal},
		{"Cash Withdrawal Branch", true, model.TypeATMWithdrawal},
		{"POS 4321 BIG BAZAAR", true, model.TypeCardPayment},
		{"Debit Card swipe", true, model.TypeCardPayment},
		{"NEFT-HDFC-RENT", true, model.TypeBankTransfer},
		{"IMPS/P2A/998877", false, model.TypeBankTransfer},
		{"SWIGGY ORDER", true, model.TypeDebit},
		{"SALARY OCT", false, model.TypeCredit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.desc, tt.isDebit), "Classify(%q, %v)", tt.desc, tt.isDebit)
	}
}

func TestTypeClassifier_Priority(t *testing.T) {
	c := DefaultTypeClassifier()
	// UPI keywords are tested before ATM, card and transfer keywords.
	assert.Equal(t, model.TypeUPISent, c.Classify("upi atm card neft", true))
	assert.Equal(t, model.TypeATMWithdrawal, c.Classify("atm card neft", true))
	assert.Equal(t, model.TypeCardPayment, c.Classify("card neft", true))
}

func TestTypeClassifier_UPIAlwaysWinsOnDebit(t *testing.T) {
	c := DefaultTypeClassifier()
	for _, desc := range []string{"UPI-ATM", "upi card", "transfer via upi", "Paytm POS", "phonepe imps"} {
		assert.Equal(t, model.TypeUPISent, c.Classify(desc, true), desc)
	}
}

func TestCategoryClassifier_Categorize(t *testing.T) {
	c := DefaultCategoryClassifier()
	tests := []struct {
		desc string
		want model.Category
	}{
		{"SWIGGY ORDER", model.CategoryFood},
		{"Uber trip", model.CategoryTransport},
		{"AMAZON.IN", model.CategoryShopping},
		{"Spotify premium", model.CategoryEntertainment},
		{"Electricity BESCOM", model.CategoryBills},
		{"Apollo Pharmacy", model.CategoryHealthcare},
		{"Udemy course", model.CategoryEducation},
		{"Rent to landlord", model.CategoryOther},
		{"", model.CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Categorize(tt.desc), "Categorize(%q)", tt.desc)
	}
}

func TestCategoryClassifier_Priority(t *testing.T) {
	c := DefaultCategoryClassifier()
	assert.Equal(t, model.CategoryEntertainment, c.Categorize("netflix bill"))
	assert.Equal(t, model.CategoryEntertainment, c.Categorize("Netflix subscription"))
	// Food is tested before Shopping.
	assert.Equal(t, model.CategoryFood, c.Categorize("food court mall"))
}

func TestSourceDetector_Detect(t *testing.T) {
	d := NewSourceDetector(defaultSourceRules(), "Email Import")
	tests := []struct {
		text string
		want string
	}{
		{"Sent via Google Pay from HDFC", "Google Pay"},
		{"PhonePe payment", "PhonePe"},
		{"HDFC Bank alert", "HDFC Bank"},
		{"State Bank of India", "SBI"},
		{"Your ICICI card", "ICICI Bank"},
		{"random merchant", "Email Import"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Detect(tt.text), "Detect(%q)", tt.text)
	}
}

func TestCustomRules_KeywordsAreCaseInsensitive(t *testing.T) {
	c := NewCategoryClassifier([]CategoryRule{{Category: model.CategoryBills, Keywords: []string{"  AIRTEL "}}})
	assert.Equal(t, model.CategoryBills, c.Categorize("airtel postpaid"))
}

func TestLoadRules_MissingFileUsesDefaults(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), rules)
}

func TestLoadRules_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `categories:
  - category: education
    keywords: [netflix]
  - category: entertainment
    keywords: [netflix, spotify]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules.Categories, 2)
	assert.Equal(t, defaultTypeRules(), rules.Types)
	assert.Equal(t, defaultSourceRules(), rules.Sources)

	c := NewCategoryClassifier(rules.Categories)
	assert.Equal(t, model.CategoryEducation, c.Categorize("netflix"), "file order is priority order")
}

func TestLoadRules_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - category: groceries\n    keywords: [x]\n"), 0o644))
	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	require.NoError(t, os.WriteFile(path, []byte("types: [[[\n"), 0o644))
	_, err = LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing rules")
}

func TestSaveRules_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, SaveRules(path, DefaultRules()))

	got, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), got)
}

func TestNewSet(t *testing.T) {
	set := NewSet(DefaultRules(), "Email Import")
	assert.Equal(t, model.TypeUPISent, set.Types.Classify("upi", true))
	assert.Equal(t, model.CategoryFood, set.Categories.Categorize("zomato"))
	assert.Equal(t, "Paytm", set.Sources.Detect("paytm wallet"))
}
