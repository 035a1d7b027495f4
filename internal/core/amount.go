// Package core holds the domain types shared by the storage, analysis and
// HTTP layers.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a form-submitted quantity to an exact decimal.
//
// Both dot (12.5) and comma (12,5) separators are accepted. Negative and
// zero quantities are rejected. The decimal survives storage round-trips
// verbatim; it is converted to float64 only at the regression boundary.
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
	if d.IsNegative() || d.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
