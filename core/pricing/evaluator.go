package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// ProposedCostBreakdown is the uniform result shape every model evaluator
// returns. Totals are sums of already-rounded components.
type ProposedCostBreakdown struct {
	ModelKind catalog.ModelKind `json:"model_kind"`
	ConfigID  string            `json:"config_id"`

	PassThroughCost decimal.Decimal `json:"pass_through_cost"`
	MarkupCost      decimal.Decimal `json:"markup_cost"`
	PerItemCost     decimal.Decimal `json:"per_item_cost"`
	MonthlyCost     decimal.Decimal `json:"monthly_cost"`
	OneTimeCost     decimal.Decimal `json:"one_time_cost"`
	Total           decimal.Decimal `json:"total"`

	// AssumedBlendedPassThrough is set when the card mix was unknown and
	// the pass-through is a blended-rate estimate, not interchange detail.
	AssumedBlendedPassThrough bool `json:"assumed_blended_pass_through,omitempty"`

	Trace Trace `json:"trace"`
}

// Evaluate computes the proposed monthly cost under one pricing model.
// Dispatch over the model kind is exhaustive: the variant set is closed
// and audit-critical, so an unknown kind is a caller error, not a lookup
// miss.
func Evaluate(p *profile.NormalizedCostProfile, cfg catalog.PricingModelConfig, cat *catalog.CatalogVersion) (*ProposedCostBreakdown, error) {
	if p == nil {
		return nil, errors.Input("nil profile")
	}
	if cat == nil {
		return nil, errors.Input("nil catalog version")
	}
	if err := p.RequireComplete(cfg.Kind); err != nil {
		return nil, err
	}

	var (
		b   *ProposedCostBreakdown
		err error
	)
	switch cfg.Kind {
	case catalog.ModelCostPlus:
		b, err = evaluateCostPlus(p, cfg, cat)
	case catalog.ModelIPlus:
		b, err = evaluateIPlus(p, cfg, cat)
	case catalog.ModelDiscountRate:
		b, err = evaluateDiscountRate(p, cfg)
	case catalog.ModelFlat:
		b, err = evaluateFlat(p, cfg)
	default:
		return nil, errors.UnsupportedModel(string(cfg.Kind))
	}
	if err != nil {
		return nil, err
	}

	b.ModelKind = cfg.Kind
	b.ConfigID = cfg.ID
	b.Total = b.PassThroughCost.
		Add(b.MarkupCost).
		Add(b.PerItemCost).
		Add(b.MonthlyCost).
		Add(b.OneTimeCost)

	if err := b.Trace.VerifyTotal(string(cfg.Kind), b.Total); err != nil {
		return nil, err
	}
	return b, nil
}

// perItemAndMonthly adds the per-item and monthly fee components shared
// by every model. Zero-amount entries are recorded deliberately.
func perItemAndMonthly(b *ProposedCostBreakdown, p *profile.NormalizedCostProfile, cfg catalog.PricingModelConfig) {
	count := decimal.NewFromInt(p.TransactionCount)
	perItem := cfg.Rounding.Apply(cfg.PerItemFee.Mul(count))
	b.PerItemCost = b.Trace.Add(TraceEntry{
		FeeItemID: cfg.ID + ":per_item",
		Label:     "Per-item fee",
		Inputs: inputs(
			"per_item_fee", cfg.PerItemFee.String(),
			"transaction_count", count.String(),
		),
		Amount: perItem,
	})

	monthly := cfg.Rounding.Apply(cfg.MonthlyFee)
	b.MonthlyCost = b.Trace.Add(TraceEntry{
		FeeItemID: cfg.ID + ":monthly",
		Label:     "Monthly fee",
		Inputs:    inputs("monthly_fee", cfg.MonthlyFee.String()),
		Amount:    monthly,
	})
}

// passThrough computes the interchange/assessment pass-through component
// for cost-plus style models. Preference order: catalog fee items applied
// to the known card mix, then the statement's stated interchange total,
// then a blended-rate assumption (flagged on the breakdown).
func passThrough(b *ProposedCostBreakdown, p *profile.NormalizedCostProfile, cfg catalog.PricingModelConfig, cat *catalog.CatalogVersion) {
	items := append(cat.FeeItemsOfClass(catalog.ClassInterchange),
		cat.FeeItemsOfClass(catalog.ClassAssessment)...)

	if p.HasBrandMix() && len(items) > 0 {
		total := decimal.Zero
		for _, item := range items {
			vol := matchedVolume(p, item)
			var amount decimal.Decimal
			switch item.Kind {
			case catalog.PercentOfVolume:
				amount = item.Rounding.Apply(vol.Mul(item.RateBps.Rate()))
			case catalog.PerItem:
				amount = item.Rounding.Apply(item.Amount.Mul(perItemCount(p, item)))
			default:
				amount = decimal.Zero
			}
			total = total.Add(b.Trace.Add(TraceEntry{
				FeeItemID: item.ID,
				Label:     item.Name,
				Inputs: inputs(
					"matched_volume", vol.String(),
					"rate", item.RateBps.Rate().String(),
				),
				Amount: amount,
			}))
		}
		b.PassThroughCost = total
		return
	}

	// Catalog items were considered but could not be applied; keep them
	// visible in the trace as explicit zero entries.
	for _, item := range items {
		b.Trace.Add(TraceEntry{
			FeeItemID: item.ID,
			Label:     item.Name + " (no card mix detail)",
			Amount:    decimal.Zero,
		})
	}

	if p.HasInterchange {
		b.PassThroughCost = b.Trace.Add(TraceEntry{
			FeeItemID: "profile:interchange_total",
			Label:     "Interchange pass-through (statement)",
			Inputs:    inputs("interchange_total", p.InterchangeTotal.String()),
			Amount:    cfg.Rounding.Apply(p.InterchangeTotal),
		})
		return
	}

	// Blended fallback. The exact decomposition is the catalog owner's
	// call; the output carries an explicit assumption flag either way.
	blendedRate := decimal.New(p.QualifiedRateBps, -4)
	amount := cfg.Rounding.Apply(p.MonthlyVolume.Mul(blendedRate))
	b.PassThroughCost = b.Trace.Add(TraceEntry{
		FeeItemID: "profile:blended_passthrough",
		Label:     "Estimated pass-through (blended assumption)",
		Inputs: inputs(
			"monthly_volume", p.MonthlyVolume.String(),
			"qualified_rate", blendedRate.String(),
		),
		Amount:  amount,
		Assumed: true,
	})
	b.AssumedBlendedPassThrough = true
}

// matchedVolume returns the slice of monthly volume a fee item applies to.
func matchedVolume(p *profile.NormalizedCostProfile, item catalog.FeeItem) decimal.Decimal {
	if item.AppliesTo.IsUnrestricted() {
		return p.MonthlyVolume
	}
	total := decimal.Zero
	for _, bv := range p.BrandVolumes {
		if item.AppliesTo.Matches(catalog.Segment{Brand: bv.Brand}) {
			total = total.Add(bv.Volume)
		}
	}
	return total
}

// perItemCount returns the transaction count a per-item fee applies to.
// Interac-scoped fees bill the Interac count, everything else the full
// transaction count.
func perItemCount(p *profile.NormalizedCostProfile, item catalog.FeeItem) decimal.Decimal {
	if item.AppliesTo.Brand == catalog.BrandInterac {
		return decimal.NewFromInt(p.InteracTxnCount)
	}
	return decimal.NewFromInt(p.TransactionCount)
}
