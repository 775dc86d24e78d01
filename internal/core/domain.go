package core

import (
	"errors"
	"strings"
)

const (
	Income  TransactionType = "income"
	Outcome TransactionType = "outcome"
)

type (
	// TransactionType is the direction of a ledger entry. Income and outcome
	// differ only by sign in the aggregate, not by behavior.
	TransactionType string

	Money struct {
		Cents int64
	}

	// Category is a label shared by many transactions. Titles are unique,
	// matched case-sensitively, and never deleted once created.
	Category struct {
		ID    int64
		Title string
	}

	// Transaction is a single ledger entry. Category is always populated on
	// reads so consumers never need a second lookup.
	Transaction struct {
		ID       int64
		Title    string
		Value    Money
		Type     TransactionType
		Category Category
	}

	// Balance is derived from the full transaction set on demand. It is
	// never cached: any cache would need invalidation on every write.
	Balance struct {
		Income  Money
		Outcome Money
		Total   Money
	}
)

var (
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyTitle          = errors.New("empty title")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
)

// ParseTransactionType validates a textual type from user input or CSV.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case Income, Outcome:
		return TransactionType(s), nil
	default:
		return "", ErrInvalidType
	}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Outcome
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Value.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category.Title) == "" {
		return ErrEmptyCategory
	}
	return nil
}
