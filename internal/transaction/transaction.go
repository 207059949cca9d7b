package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidType   = errors.New("type must be income or expense")
	ErrInvalidDate   = errors.New("date is required")
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a dated movement on a card, in its original currency and
// normalized to VND.
type Transaction struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	CardID         *uuid.UUID
	CategoryID     *uuid.UUID
	Type           Type
	Amount         decimal.Decimal // in Currency
	Currency       string
	VNDAmount      int64
	Description    string
	RawDescription string
	Date           time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
}
