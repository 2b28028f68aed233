package pricing

import (
	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
)

// evaluateFlat: flat percent on volume and/or flat per-item fee, plus
// monthly fees. No pass-through component.
func evaluateFlat(p *profile.NormalizedCostProfile, cfg catalog.PricingModelConfig) (*ProposedCostBreakdown, error) {
	b := &ProposedCostBreakdown{}

	amount := cfg.Rounding.Apply(p.MonthlyVolume.Mul(cfg.FlatRateBps.Rate()))
	b.MarkupCost = b.Trace.Add(TraceEntry{
		FeeItemID: cfg.ID + ":flat_rate",
		Label:     "Flat rate",
		Inputs: inputs(
			"monthly_volume", p.MonthlyVolume.String(),
			"rate", cfg.FlatRateBps.Rate().String(),
		),
		Amount: amount,
	})

	perItemAndMonthly(b, p, cfg)
	return b, nil
}
