// Package core provides the expense domain types shared by the aggregator,
// the store, and the HTTP layer.
//
// This file contains amount parsing. Amounts travel through the system as
// fixed-point decimals so that sums do not drift; rounding to two places
// happens only at report assembly.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a positive fixed-point amount.
// It accepts both dot (12.34) and comma (12,34) separators. Empty strings,
// non-numeric input and non-positive values are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Round2 rounds a decimal half-up to two places, the presentation precision
// for all monetary values in reports.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
