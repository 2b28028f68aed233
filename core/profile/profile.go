// Package profile defines the normalized merchant cost profile consumed by
// the calculation engine. Profiles arrive from the document-extraction or
// manual-entry collaborator with all fields already validated as decimals;
// this package only checks completeness for a chosen pricing model.
package profile

import (
	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// FieldSource records where a profile field came from
type FieldSource string

const (
	SourceExtracted FieldSource = "extracted"
	SourceManual    FieldSource = "manual"
)

// Provenance is per-field extraction metadata. Confidence is 0..1;
// manual entries carry 1.
type Provenance struct {
	Source     FieldSource `json:"source"`
	Confidence float64     `json:"confidence"`
}

// BrandVolume is the monthly volume attributed to one card brand
type BrandVolume struct {
	Brand  catalog.CardBrand `json:"brand"`
	Volume decimal.Decimal   `json:"volume"`
}

// ExistingFee is a fee the merchant currently pays its processor,
// expressed with the same primitives as catalog fee items.
type ExistingFee struct {
	Name     string            `json:"name"`
	Kind     catalog.FeeKind   `json:"kind"`
	RateBps  int64             `json:"rate_bps,omitempty"`
	Amount   decimal.Decimal   `json:"amount,omitempty"`
	Quantity decimal.Decimal   `json:"quantity,omitempty"` // e.g. device count for leases
}

// NormalizedCostProfile is the merchant's current processing facts.
// Immutable once attached to an analysis; the engine never mutates it.
type NormalizedCostProfile struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenant_id"`
	MerchantID string `json:"merchant_id"`

	// Business attributes used by surcharge eligibility
	MCC   string `json:"mcc,omitempty"`
	State string `json:"state,omitempty"`

	// Monthly baseline
	MonthlyVolume    decimal.Decimal `json:"monthly_volume"`
	TransactionCount int64           `json:"transaction_count"`
	InteracTxnCount  int64           `json:"interac_txn_count,omitempty"`

	// Card mix; empty means unknown and forces blended assumptions
	BrandVolumes []BrandVolume `json:"brand_volumes,omitempty"`

	// Interchange detail when the statement exposes it
	InterchangeTotal decimal.Decimal `json:"interchange_total,omitempty"`
	HasInterchange   bool            `json:"has_interchange"`

	// Blended fallback rates when interchange detail is unavailable,
	// expressed in basis points
	QualifiedRateBps    int64 `json:"qualified_rate_bps,omitempty"`
	NonQualifiedRateBps int64 `json:"non_qualified_rate_bps,omitempty"`

	// Current processor cost structure
	CurrentRateBps     int64           `json:"current_rate_bps,omitempty"`
	CurrentPerItemFee  decimal.Decimal `json:"current_per_item_fee,omitempty"`
	CurrentMonthlyFees decimal.Decimal `json:"current_monthly_fees,omitempty"`
	ExistingFees       []ExistingFee   `json:"existing_fees,omitempty"`

	// Statement period length in days, for the actual-days convention
	StatementPeriodDays int `json:"statement_period_days,omitempty"`

	// Provenance keyed by field name
	Provenance map[string]Provenance `json:"provenance,omitempty"`

	Version string `json:"version"`
}

// BrandVolumeFor returns the volume attributed to one brand.
func (p *NormalizedCostProfile) BrandVolumeFor(brand catalog.CardBrand) decimal.Decimal {
	for _, bv := range p.BrandVolumes {
		if bv.Brand == brand {
			return bv.Volume
		}
	}
	return decimal.Zero
}

// HasBrandMix reports whether any per-brand volume is known.
func (p *NormalizedCostProfile) HasBrandMix() bool {
	for _, bv := range p.BrandVolumes {
		if bv.Volume.IsPositive() {
			return true
		}
	}
	return false
}

// missingModelFields returns the fields the evaluator itself cannot work
// without. Current-processor fields are deliberately excluded: a profile
// with no current data is still a valid proposal input (zero baseline).
func (p *NormalizedCostProfile) missingModelFields(kind catalog.ModelKind) []string {
	var missing []string
	if !p.MonthlyVolume.IsPositive() {
		missing = append(missing, "monthly_volume")
	}
	switch kind {
	case catalog.ModelCostPlus, catalog.ModelIPlus:
		if !p.HasInterchange && p.QualifiedRateBps == 0 && !p.HasBrandMix() {
			missing = append(missing, "interchange_total or qualified_rate_bps")
		}
	case catalog.ModelDiscountRate:
		// Brand mix is preferred but the total volume fallback is allowed.
	case catalog.ModelFlat:
	}
	return missing
}

// MissingFields returns every field a full comparison would want for the
// chosen model, including the current-processor side. Informational: the
// result is reported on the comparison, only evaluator-critical fields
// fail the computation.
func (p *NormalizedCostProfile) MissingFields(kind catalog.ModelKind) []string {
	missing := p.missingModelFields(kind)
	if p.CurrentRateBps == 0 && len(p.ExistingFees) == 0 {
		missing = append(missing, "current_rate_bps")
	}
	return missing
}

// RequireComplete fails with MISSING_REQUIRED_INPUT when the profile
// cannot feed the chosen model.
func (p *NormalizedCostProfile) RequireComplete(kind catalog.ModelKind) error {
	if missing := p.missingModelFields(kind); len(missing) > 0 {
		return errors.MissingInput(missing...)
	}
	return nil
}
