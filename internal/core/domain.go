package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentMethod is substituted when a row arrives without one.
const DefaultPaymentMethod = "Unknown"

type (
	// ExpenseRecord is a raw row as returned by the store. Every field except
	// OwnerID is untrusted: Amount may be empty or non-numeric, OccurredAt may
	// be the zero time, CategoryName may be missing when the join found no
	// category.
	ExpenseRecord struct {
		OwnerID       string
		Amount        string
		OccurredAt    time.Time
		PaymentMethod string
		CategoryName  string
	}

	// Expense is a validated, normalized record. All aggregate computations
	// operate on Expenses only.
	Expense struct {
		OwnerID       string
		Amount        decimal.Decimal
		OccurredAt    time.Time
		CategoryName  string
		PaymentMethod string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingDate     = errors.New("missing date")
	ErrMissingCategory = errors.New("missing category")
)

// Clean validates a raw record and produces a normalized Expense.
// A missing payment method defaults to DefaultPaymentMethod; every other
// defect is an error so the caller can decide whether to drop the row.
func (r ExpenseRecord) Clean() (Expense, error) {
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return Expense{}, err
	}
	if r.OccurredAt.IsZero() {
		return Expense{}, ErrMissingDate
	}
	if strings.TrimSpace(r.CategoryName) == "" {
		return Expense{}, ErrMissingCategory
	}

	method := strings.TrimSpace(r.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	return Expense{
		OwnerID:       r.OwnerID,
		Amount:        amount,
		OccurredAt:    r.OccurredAt,
		CategoryName:  r.CategoryName,
		PaymentMethod: method,
	}, nil
}

// Day returns the calendar date of the expense as "YYYY-MM-DD", derived from
// the expense's own timestamp in UTC.
func (e Expense) Day() string {
	return e.OccurredAt.UTC().Format(DateLayout)
}
