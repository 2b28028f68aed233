// Package money - Exact decimal money math
// All monetary amounts flow through decimal.Decimal with explicit rounding.
// NEVER use float64 for money calculations.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BasisPoints stores a percentage as an exact integer (1 bps = 0.01%).
// Percent rates in the catalog are always basis points, never floats.
type BasisPoints int64

// Rate returns the multiplier for this rate (e.g. 250 bps -> 0.025).
func (b BasisPoints) Rate() decimal.Decimal {
	return decimal.New(int64(b), -4)
}

// Percent returns the human-readable percentage (e.g. 250 bps -> 2.5).
func (b BasisPoints) Percent() decimal.Decimal {
	return decimal.New(int64(b), -2)
}

// String implements Stringer
func (b BasisPoints) String() string {
	return fmt.Sprintf("%s%%", b.Percent().String())
}

// RoundingMode selects how a RoundingRule resolves ties and remainders.
type RoundingMode string

const (
	// RoundHalfUp rounds .5 away from zero (statement convention).
	RoundHalfUp RoundingMode = "half_up"

	// RoundHalfEven is banker's rounding.
	RoundHalfEven RoundingMode = "half_even"

	// RoundDown truncates toward zero.
	RoundDown RoundingMode = "down"

	// RoundUp rounds away from zero.
	RoundUp RoundingMode = "up"
)

// RoundingRule is the explicit rounding carried by every fee item.
type RoundingRule struct {
	Places int32        `json:"places" yaml:"places"`
	Mode   RoundingMode `json:"mode" yaml:"mode"`
}

// DefaultRule is two decimal places, half up. Matches how processor
// statements themselves round line items.
func DefaultRule() RoundingRule {
	return RoundingRule{Places: 2, Mode: RoundHalfUp}
}

// Apply rounds an amount per the rule. Unknown modes fall back to half up
// rather than producing unrounded output.
func (r RoundingRule) Apply(d decimal.Decimal) decimal.Decimal {
	switch r.Mode {
	case RoundHalfEven:
		return d.RoundBank(r.Places)
	case RoundDown:
		return d.RoundDown(r.Places)
	case RoundUp:
		return d.RoundUp(r.Places)
	case RoundHalfUp, "":
		return d.Round(r.Places)
	default:
		return d.Round(r.Places)
	}
}

// IsZero reports whether the rule is the zero value (unset).
func (r RoundingRule) IsZero() bool {
	return r.Places == 0 && r.Mode == ""
}

// RequireExact verifies that got equals want exactly. Used by invariant
// checks that must fail loudly instead of absorbing drift.
func RequireExact(got, want decimal.Decimal) error {
	if !got.Equal(want) {
		return fmt.Errorf("exactness violation: got %s, want %s (drift %s)",
			got.String(), want.String(), got.Sub(want).String())
	}
	return nil
}

// Sum adds amounts without rounding. Rounding happens per component,
// before summation, so totals are sums of already-rounded parts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
