// Package pricing implements the four pricing model evaluators behind one
// uniform compute contract. Every amount an evaluator produces is recorded
// in a CalculationTrace; the sum of trace entries for a total must equal
// that total exactly.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// TraceEntry is one audited contribution to a total. Zero-amount entries
// are kept: an audit must see what was considered, not just what charged.
type TraceEntry struct {
	FeeItemID string            `json:"fee_item_id"`
	Label     string            `json:"label"`
	Inputs    map[string]string `json:"inputs,omitempty"`
	Amount    decimal.Decimal   `json:"amount"`
	Assumed   bool              `json:"assumed,omitempty"`
}

// Trace is the ordered audit log of a computation
type Trace struct {
	Entries []TraceEntry `json:"entries"`
}

// Add appends an entry and returns its rounded amount for accumulation.
func (t *Trace) Add(entry TraceEntry) decimal.Decimal {
	t.Entries = append(t.Entries, entry)
	return entry.Amount
}

// Sum returns the exact sum of all entry amounts.
func (t *Trace) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.Amount)
	}
	return total
}

// Append concatenates another trace onto this one.
func (t *Trace) Append(other Trace) {
	t.Entries = append(t.Entries, other.Entries...)
}

// VerifyTotal enforces the trace-sum invariant. A mismatch is an internal
// defect (ROUNDING_POLICY_VIOLATION), never a value to paper over.
func (t *Trace) VerifyTotal(label string, total decimal.Decimal) error {
	if err := money.RequireExact(t.Sum(), total); err != nil {
		return errors.RoundingViolation(label, err)
	}
	return nil
}

// inputs builds the audit input map from alternating key/value pairs.
func inputs(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}
