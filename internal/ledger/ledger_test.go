package ledger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenso-dev/expenso/internal/classify"
	"github.com/expenso-dev/expenso/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(t *testing.T, desc, amount string, typ model.TransactionType) model.Transaction {
	t.Helper()
	tx, err := model.NewTransaction(model.TransactionParams{
		Description: desc,
		Amount:      dec(amount),
		Type:        typ,
		Date:        date(2024, 3, 5),
		Source:      "Bank Statement",
	})
	require.NoError(t, err)
	return tx
}

func expense(id, desc, amount string, c model.Category, d time.Time) model.Expense {
	return model.Expense{ID: id, Description: desc, Amount: dec(amount), Category: c, Date: d}
}

func TestToExpense_Debit(t *testing.T) {
	var c Converter
	tx := txn(t, "SWIGGY ORDER", "350.00", model.TypeDebit)

	e, ok := c.ToExpense(tx)
	require.True(t, ok)
	assert.NotEmpty(t, e.ID)
	assert.NotEqual(t, tx.ID, e.ID)
	assert.Equal(t, tx.Description, e.Description)
	assert.True(t, tx.Amount.Equal(e.Amount))
	assert.Equal(t, tx.Date, e.Date)
	assert.Equal(t, model.CategoryFood, e.Category)
}

func TestToExpense_IncomeIsSkipped(t *testing.T) {
	var c Converter
	for _, typ := range []model.TransactionType{model.TypeCredit, model.TypeUPIReceived} {
		_, ok := c.ToExpense(txn(t, "Salary", "50000", typ))
		assert.False(t, ok, typ)
	}
}

func TestToExpense_OtherTypesConvert(t *testing.T) {
	var c Converter
	for _, typ := range []model.TransactionType{
		model.TypeUPISent, model.TypeCardPayment, model.TypeATMWithdrawal,
		model.TypeBankTransfer, model.TypeOther,
	} {
		e, ok := c.ToExpense(txn(t, "misc", "10", typ))
		require.True(t, ok, typ)
		assert.Equal(t, model.CategoryOther, e.Category)
	}
}

func TestToExpense_Idempotent(t *testing.T) {
	var c Converter
	tx := txn(t, "Netflix bill", "649", model.TypeCardPayment)

	a, ok := c.ToExpense(tx)
	require.True(t, ok)
	b, ok := c.ToExpense(tx)
	require.True(t, ok)

	assert.Equal(t, a.Description, b.Description)
	assert.True(t, a.Amount.Equal(b.Amount))
	assert.Equal(t, a.Date, b.Date)
	assert.Equal(t, model.CategoryEntertainment, a.Category)
	assert.Equal(t, a.Category, b.Category)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestToExpense_CustomCategories(t *testing.T) {
	c := Converter{Categories: classify.NewCategoryClassifier([]classify.CategoryRule{
		{Category: model.CategoryShopping, Keywords: []string{"swiggy"}},
	})}
	e, ok := c.ToExpense(txn(t, "SWIGGY ORDER", "350", model.TypeDebit))
	require.True(t, ok)
	assert.Equal(t, model.CategoryShopping, e.Category)
}

func TestToExpenses(t *testing.T) {
	var c Converter
	out := c.ToExpenses([]model.Transaction{
		txn(t, "Uber trip", "220", model.TypeUPISent),
		txn(t, "Salary", "50000", model.TypeCredit),
		txn(t, "Apollo pharmacy", "310", model.TypeCardPayment),
	})
	require.Len(t, out, 2)
	assert.Equal(t, model.CategoryTransport, out[0].Category)
	assert.Equal(t, model.CategoryHealthcare, out[1].Category)
}

func TestCSVRoundTrip(t *testing.T) {
	expenses := []model.Expense{
		expense("exp_1", "Swiggy", "499.00", model.CategoryFood, date(2024, 3, 5)),
		expense("exp_2", `ACME, "Invoice 7"`, "1234.5", model.CategoryShopping, date(2024, 3, 6)),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExpenses(&buf, expenses))
	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))
	assert.Contains(t, buf.String(), "1234.50")

	got, err := ReadExpenses(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range expenses {
		assert.Equal(t, expenses[i].ID, got[i].ID)
		assert.Equal(t, expenses[i].Description, got[i].Description)
		assert.True(t, expenses[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, expenses[i].Category, got[i].Category)
		assert.True(t, expenses[i].Date.Equal(got[i].Date))
	}
}

func TestReadExpenses_Empty(t *testing.T) {
	got, err := ReadExpenses(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadExpenses(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalExpense_Errors(t *testing.T) {
	_, err := UnmarshalExpense([]string{"exp_1", "2024-03-05"})
	assert.Error(t, err)

	_, err = UnmarshalExpense([]string{"exp_1", "05/03/2024", "x", "1.00", "food"})
	assert.ErrorContains(t, err, "parsing date")

	_, err = UnmarshalExpense([]string{"exp_1", "2024-03-05", "x", "abc", "food"})
	assert.ErrorContains(t, err, "parsing amount")

	e, err := UnmarshalExpense([]string{"exp_1", "2024-03-05", "x", "1.00", "groceries"})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryOther, e.Category)
}

func TestService_AddAndAll(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)

	all, err := svc.All()
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, svc.Add(expense("exp_1", "Swiggy", "499", model.CategoryFood, date(2024, 3, 5))))
	require.NoError(t, svc.Add(expense("exp_2", "Uber", "220", model.CategoryTransport, date(2024, 4, 1))))

	data, err := os.ReadFile(filepath.Join(dir, "ledger", "expenses.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header), "header written once")

	all, err = svc.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "exp_1", all[0].ID)
	assert.Equal(t, "exp_2", all[1].ID)

	march, err := svc.Month(2024, 3)
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.Equal(t, "Swiggy", march[0].Description)
}

func TestService_Init(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir)
	require.NoError(t, svc.Init())

	data, err := os.ReadFile(svc.Path())
	require.NoError(t, err)
	assert.Equal(t, Header+"\n", string(data))

	require.NoError(t, svc.Add(expense("exp_1", "Swiggy", "499", model.CategoryFood, date(2024, 3, 5))))
	require.NoError(t, svc.Init())
	all, err := svc.All()
	require.NoError(t, err)
	assert.Len(t, all, 1, "Init must not truncate an existing ledger")
}

func TestService_Delete(t *testing.T) {
	svc := NewService(t.TempDir())
	require.NoError(t, svc.Add(
		expense("exp_1", "Swiggy", "499", model.CategoryFood, date(2024, 3, 5)),
		expense("exp_2", "Uber", "220", model.CategoryTransport, date(2024, 3, 6)),
	))

	require.NoError(t, svc.Delete("exp_1"))
	all, err := svc.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "exp_2", all[0].ID)

	err = svc.Delete("exp_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Import(t *testing.T) {
	svc := NewService(t.TempDir())
	first := []model.Expense{
		expense("exp_1", "Swiggy", "499", model.CategoryFood, date(2024, 3, 5)),
		expense("exp_2", "Uber", "220", model.CategoryTransport, date(2024, 3, 6)),
	}
	added, err := svc.Import(first, true)
	require.NoError(t, err)
	assert.Len(t, added, 2)

	again := []model.Expense{
		expense("exp_3", "Swiggy", "499.00", model.CategoryFood, date(2024, 3, 5)),
		expense("exp_4", "Metro", "40", model.CategoryTransport, date(2024, 3, 7)),
	}
	added, err = svc.Import(again, true)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "exp_4", added[0].ID)

	added, err = svc.Import(again[:1], false)
	require.NoError(t, err)
	assert.Len(t, added, 1)

	all, err := svc.All()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestService_Totals(t *testing.T) {
	svc := NewService(t.TempDir())
	require.NoError(t, svc.Add(
		expense("exp_1", "Swiggy", "499.50", model.CategoryFood, date(2024, 3, 5)),
		expense("exp_2", "Zomato", "200.25", model.CategoryFood, date(2024, 3, 9)),
		expense("exp_3", "Uber", "220", model.CategoryTransport, date(2024, 3, 6)),
		expense("exp_4", "Rent", "15000", model.CategoryOther, date(2024, 4, 1)),
	))

	total, err := svc.Total()
	require.NoError(t, err)
	assert.Equal(t, "15919.75", total.Total.StringFixed(2))
	assert.Equal(t, 4, total.Count)

	march, err := svc.MonthTotal(2024, 3)
	require.NoError(t, err)
	assert.Equal(t, "919.75", march.Total.StringFixed(2))
	require.Len(t, march.ByCategory, 2)
	assert.Equal(t, model.CategoryFood, march.ByCategory[0].Category)
	assert.Equal(t, "699.75", march.ByCategory[0].Amount.StringFixed(2))
	assert.Equal(t, 2, march.ByCategory[0].Count)
	assert.Equal(t, model.CategoryTransport, march.ByCategory[1].Category)
}

func TestRemaining(t *testing.T) {
	left, ok := Remaining(dec("20000"), dec("919.75"))
	require.True(t, ok)
	assert.Equal(t, "19080.25", left.StringFixed(2))

	left, ok = Remaining(dec("500"), dec("919.75"))
	require.True(t, ok)
	assert.True(t, left.IsNegative())

	_, ok = Remaining(decimal.Zero, dec("10"))
	assert.False(t, ok)
}

func TestDeduplicate(t *testing.T) {
	existing := []model.Expense{
		expense("exp_1", "Swiggy", "499", model.CategoryFood, date(2024, 3, 5)),
	}
	incoming := []model.Expense{
		expense("exp_2", "Swiggy", "499.00", model.CategoryFood, date(2024, 3, 5)),
		expense("exp_3", "Swiggy", "499", model.CategoryFood, date(2024, 3, 6)),
		expense("exp_4", "Coffee", "120", model.CategoryFood, date(2024, 3, 6)),
		expense("exp_5", "Coffee", "120", model.CategoryFood, date(2024, 3, 6)),
	}

	got := Deduplicate(existing, incoming)
	require.Len(t, got, 3)
	assert.Equal(t, "exp_3", got[0].ID)
	assert.Equal(t, "exp_4", got[1].ID)
	assert.Equal(t, "exp_5", got[2].ID)

	assert.Len(t, Deduplicate(nil, incoming), 4)
}

func TestInCategory(t *testing.T) {
	expenses := []model.Expense{
		expense("exp_1", "Swiggy", "499", model.CategoryFood, date(2024, 3, 5)),
		expense("exp_2", "Uber", "220", model.CategoryTransport, date(2024, 3, 6)),
	}
	got := InCategory(expenses, model.CategoryTransport)
	require.Len(t, got, 1)
	assert.Equal(t, "exp_2", got[0].ID)
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2024, m.Year())
	assert.Equal(t, time.March, m.Month())

	for _, bad := range []string{"", "03-2024", "2024-13", "March"} {
		_, err := ParseMonth(bad)
		assert.ErrorIs(t, err, errBadMonth, bad)
	}
}
