// Package catalog defines the versioned fee/pricing records and resolves
// them into immutable, content-addressed catalog versions.
// Catalog tables are admin-edited and mutable; calculations only ever see
// a resolved CatalogVersion, never the live tables.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
)

// FeeKind is the structural shape of a fee
type FeeKind string

const (
	PercentOfVolume FeeKind = "percent_of_volume"
	PerItem         FeeKind = "per_item"
	Monthly         FeeKind = "monthly"
	OneTime         FeeKind = "one_time"
)

// FeeClass separates pass-through network costs from processor revenue
type FeeClass string

const (
	ClassInterchange FeeClass = "interchange"
	ClassAssessment  FeeClass = "assessment"
	ClassProcessor   FeeClass = "processor"
)

// CardBrand identifies a card network. Empty means any brand.
type CardBrand string

const (
	BrandVisa       CardBrand = "visa"
	BrandMastercard CardBrand = "mastercard"
	BrandAmex       CardBrand = "amex"
	BrandInterac    CardBrand = "interac"
)

// CardType is debit vs credit. Empty means either.
type CardType string

const (
	TypeCredit CardType = "credit"
	TypeDebit  CardType = "debit"
)

// Presence is card-present vs card-not-present. Empty means either.
type Presence string

const (
	CardPresent    Presence = "present"
	CardNotPresent Presence = "not_present"
)

// Segment is a slice of a merchant's card mix that fees apply against
type Segment struct {
	Brand     CardBrand `json:"brand,omitempty" yaml:"brand,omitempty"`
	CardType  CardType  `json:"card_type,omitempty" yaml:"card_type,omitempty"`
	Presence  Presence  `json:"presence,omitempty" yaml:"presence,omitempty"`
	EntryMode string    `json:"entry_mode,omitempty" yaml:"entry_mode,omitempty"`
}

// AppliesTo is the filter predicate on a FeeItem. Empty fields match
// everything; a fee with a zero AppliesTo applies to all volume.
type AppliesTo Segment

// Matches reports whether the predicate covers the given segment.
func (a AppliesTo) Matches(s Segment) bool {
	if a.Brand != "" && a.Brand != s.Brand {
		return false
	}
	if a.CardType != "" && a.CardType != s.CardType {
		return false
	}
	if a.Presence != "" && a.Presence != s.Presence {
		return false
	}
	if a.EntryMode != "" && a.EntryMode != s.EntryMode {
		return false
	}
	return true
}

// IsUnrestricted reports whether the predicate matches all segments.
func (a AppliesTo) IsUnrestricted() bool {
	return a == AppliesTo{}
}

// EffectiveWindow is a half-open [From, To) validity interval.
// A zero To means the record is open-ended.
type EffectiveWindow struct {
	From time.Time `json:"effective_from" yaml:"effective_from"`
	To   time.Time `json:"effective_to,omitempty" yaml:"effective_to,omitempty"`
}

// Contains reports whether asOf falls inside the window.
func (w EffectiveWindow) Contains(asOf time.Time) bool {
	if asOf.Before(w.From) {
		return false
	}
	return w.To.IsZero() || asOf.Before(w.To)
}

// Overlaps reports whether two windows share any instant.
func (w EffectiveWindow) Overlaps(o EffectiveWindow) bool {
	wOpen := w.To.IsZero()
	oOpen := o.To.IsZero()
	if wOpen && oOpen {
		return true
	}
	if wOpen {
		return w.From.Before(o.To)
	}
	if oOpen {
		return o.From.Before(w.To)
	}
	return w.From.Before(o.To) && o.From.Before(w.To)
}

// FeeItem is the reusable fee primitive. Percent rates are basis points;
// fixed amounts are exact decimals. Every item carries its own rounding
// rule so totals are sums of already-rounded components.
type FeeItem struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Group     string             `json:"group,omitempty"`
	Kind      FeeKind            `json:"kind"`
	Class     FeeClass           `json:"class,omitempty"`
	RateBps   money.BasisPoints  `json:"rate_bps,omitempty"`
	Amount    decimal.Decimal    `json:"amount,omitempty"`
	AppliesTo AppliesTo          `json:"applies_to,omitempty"`
	Window    EffectiveWindow    `json:"window"`
	Rounding  money.RoundingRule `json:"rounding"`
}

// FeeGroup is a named ordered collection of fee items ("Network Fees").
// Groups are derived from the Group field at resolution time; order is
// the sorted item order inside the group.
type FeeGroup struct {
	Name  string    `json:"name"`
	Items []FeeItem `json:"items"`
}

// DeviceCostType distinguishes purchases from recurring leases
type DeviceCostType string

const (
	DevicePurchase     DeviceCostType = "one_time"
	DeviceMonthlyLease DeviceCostType = "monthly_lease"
)

// DeviceCatalogItem is a device or SaaS cost entry
type DeviceCatalogItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	CostType DeviceCostType  `json:"cost_type"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Window   EffectiveWindow `json:"window"`
}

// ModelKind tags a pricing model variant. The set is closed: evaluators
// dispatch over it exhaustively and audits depend on that.
type ModelKind string

const (
	ModelCostPlus     ModelKind = "cost_plus"
	ModelIPlus        ModelKind = "iplus"
	ModelDiscountRate ModelKind = "discount_rate"
	ModelFlat         ModelKind = "flat"
)

// MarkupTier is one band of a tiered markup schedule. UpToVolume is the
// inclusive upper bound of the band; zero means unlimited. A volume
// landing exactly on a boundary belongs to the lower (cheaper) band.
type MarkupTier struct {
	UpToVolume decimal.Decimal   `json:"up_to_volume"`
	MarkupBps  money.BasisPoints `json:"markup_bps"`
}

// PricingModelConfig is the tagged variant carrying model parameters.
// Only the fields for its Kind are meaningful.
type PricingModelConfig struct {
	ID     string          `json:"id"`
	Kind   ModelKind       `json:"kind"`
	Window EffectiveWindow `json:"window"`

	// Cost-Plus / iPlus
	MarkupBps    money.BasisPoints `json:"markup_bps,omitempty"`
	CardBrandBps money.BasisPoints `json:"card_brand_bps,omitempty"`
	Tiers        []MarkupTier      `json:"tiers,omitempty"`

	// Discount-Rate
	DiscountRateBps money.BasisPoints `json:"discount_rate_bps,omitempty"`
	VisaRateBps     money.BasisPoints `json:"visa_rate_bps,omitempty"`
	MastercardBps   money.BasisPoints `json:"mastercard_rate_bps,omitempty"`
	AmexRateBps     money.BasisPoints `json:"amex_rate_bps,omitempty"`
	BillbackBps     money.BasisPoints `json:"billback_bps,omitempty"`
	NonQualifiedBps money.BasisPoints `json:"non_qualified_bps,omitempty"`

	// Flat
	FlatRateBps money.BasisPoints `json:"flat_rate_bps,omitempty"`

	// Shared
	PerItemFee decimal.Decimal    `json:"per_item_fee,omitempty"`
	MonthlyFee decimal.Decimal    `json:"monthly_fee,omitempty"`
	Rounding   money.RoundingRule `json:"rounding"`
}

// ReportingMode selects how surcharge revenue enters savings
type ReportingMode string

const (
	ReportGross ReportingMode = "gross" // savings ignore surcharge revenue
	ReportNet   ReportingMode = "net"   // savings include it; needs disclosure
)

// SurchargeEligibility is the predicate set for program eligibility.
// Empty slices match everything.
type SurchargeEligibility struct {
	MCCs   []string    `json:"mccs,omitempty"`
	States []string    `json:"states,omitempty"`
	Brands []CardBrand `json:"brands,omitempty"`
}

// SurchargeProgramConfig configures the optional surcharge overlay
type SurchargeProgramConfig struct {
	ID            string               `json:"id"`
	SurchargeBps  money.BasisPoints    `json:"surcharge_bps"`
	MonthlyCap    decimal.Decimal      `json:"monthly_cap,omitempty"`
	Eligibility   SurchargeEligibility `json:"eligibility"`
	ReportingMode ReportingMode        `json:"reporting_mode"`
	Window        EffectiveWindow      `json:"window"`
	Rounding      money.RoundingRule   `json:"rounding"`
}
