package core

import (
	"errors"
	"testing"
	"time"
)

func TestExpenseRecordClean(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	good := ExpenseRecord{
		OwnerID:       "u1",
		Amount:        "100.50",
		OccurredAt:    ts,
		PaymentMethod: "upi",
		CategoryName:  "Food",
	}
	e, err := good.Clean()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.Amount.String() != "100.5" || e.CategoryName != "Food" || e.PaymentMethod != "upi" {
		t.Fatalf("unexpected clean expense: %+v", e)
	}

	// Missing payment method defaults.
	noMethod := good
	noMethod.PaymentMethod = ""
	e, err = noMethod.Clean()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.PaymentMethod != DefaultPaymentMethod {
		t.Fatalf("expected %q, got %q", DefaultPaymentMethod, e.PaymentMethod)
	}

	bads := []struct {
		name string
		rec  ExpenseRecord
		want error
	}{
		{"empty amount", ExpenseRecord{OwnerID: "u1", Amount: "", OccurredAt: ts, CategoryName: "Food"}, ErrInvalidAmount},
		{"non-numeric amount", ExpenseRecord{OwnerID: "u1", Amount: "abc", OccurredAt: ts, CategoryName: "Food"}, ErrInvalidAmount},
		{"negative amount", ExpenseRecord{OwnerID: "u1", Amount: "-5", OccurredAt: ts, CategoryName: "Food"}, ErrInvalidAmount},
		{"missing date", ExpenseRecord{OwnerID: "u1", Amount: "5", CategoryName: "Food"}, ErrMissingDate},
		{"missing category", ExpenseRecord{OwnerID: "u1", Amount: "5", OccurredAt: ts}, ErrMissingCategory},
	}
	for _, tc := range bads {
		if _, err := tc.rec.Clean(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestExpenseDay(t *testing.T) {
	e := Expense{OccurredAt: time.Date(2025, 6, 1, 23, 45, 0, 0, time.UTC)}
	if got := e.Day(); got != "2025-06-01" {
		t.Fatalf("expected 2025-06-01, got %s", got)
	}
}
