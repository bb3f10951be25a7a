package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenso-dev/expenso/internal/id"
)

var (
	// ErrEmptyDescription is returned when a transaction has no description.
	ErrEmptyDescription = errors.New("description is empty")
	// ErrNonPositiveAmount is returned when a transaction amount is zero or negative.
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Direction is the coarse flow of money for a transaction type.
type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
	DirectionOther   Direction = "other"
)

// TransactionType classifies an imported transaction.
type TransactionType string

const (
	TypeDebit         TransactionType = "DEBIT"
	TypeCredit        TransactionType = "CREDIT"
	TypeUPISent       TransactionType = "UPI_SENT"
	TypeUPIReceived   TransactionType = "UPI_RECEIVED"
	TypeCardPayment   TransactionType = "CARD_PAYMENT"
	TypeATMWithdrawal TransactionType = "ATM_WITHDRAWAL"
	TypeBankTransfer  TransactionType = "BANK_TRANSFER"
	TypeOther         TransactionType = "OTHER"
)

type typeInfo struct {
	display   string
	direction Direction
}

var typeInfos = map[TransactionType]typeInfo{
	TypeDebit:         {"Debit", DirectionExpense},
	TypeCredit:        {"Credit", DirectionIncome},
	TypeUPISent:       {"UPI Sent", DirectionExpense},
	TypeUPIReceived:   {"UPI Received", DirectionIncome},
	TypeCardPayment:   {"Card Payment", DirectionExpense},
	TypeATMWithdrawal: {"ATM Withdrawal", DirectionExpense},
	TypeBankTransfer:  {"Bank Transfer", DirectionExpense},
	TypeOther:         {"Other", DirectionOther},
}

// Direction returns the money flow for t. Unknown types are DirectionOther.
func (t TransactionType) Direction() Direction {
	if info, ok := typeInfos[t]; ok {
		return info.direction
	}
	return DirectionOther
}

// DisplayName returns the human-readable name, e.g. "UPI Sent".
func (t TransactionType) DisplayName() string {
	if info, ok := typeInfos[t]; ok {
		return info.display
	}
	return string(t)
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	_, ok := typeInfos[t]
	return ok
}

// Transaction is an externally sourced financial event produced by a parser.
// Values are built once by NewTransaction and passed by value.
type Transaction struct {
	ID              string
	Description     string
	Amount          decimal.Decimal
	Type            TransactionType
	Date            time.Time // midnight UTC, no time component
	ReferenceNumber string    // optional
	Source          string
}

// TransactionParams holds the fields a parser extracted from one input record.
type TransactionParams struct {
	Description     string
	Amount          decimal.Decimal
	Type            TransactionType
	Date            time.Time
	ReferenceNumber string
	Source          string
}

// NewTransaction validates params and returns a Transaction with a fresh ID.
func NewTransaction(params TransactionParams) (Transaction, error) {
	desc := strings.TrimSpace(params.Description)
	if desc == "" {
		return Transaction{}, ErrEmptyDescription
	}
	if !params.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: %s", ErrNonPositiveAmount, params.Amount.String())
	}
	typ := params.Type
	if !typ.Valid() {
		typ = TypeOther
	}
	return Transaction{
		ID:              id.New(id.PrefixTransaction),
		Description:     desc,
		Amount:          params.Amount,
		Type:            typ,
		Date:            DateOnly(params.Date),
		ReferenceNumber: params.ReferenceNumber,
		Source:          params.Source,
	}, nil
}

// String formats the transaction like "05 Mar 2024 - Swiggy - 499.00 - UPI Sent".
func (t Transaction) String() string {
	return fmt.Sprintf("%s - %s - %s - %s",
		t.Date.Format("02 Jan 2006"), t.Description, t.Amount.StringFixed(2), t.Type.DisplayName())
}

// DateOnly truncates tm to midnight UTC of its calendar date.
func DateOnly(tm time.Time) time.Time {
	y, m, d := tm.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
