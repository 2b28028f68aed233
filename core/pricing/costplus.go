package pricing

import (
	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
)

// evaluateCostPlus: interchange/assessment pass-through + markup on volume
// + card brand fee on volume + per-item + monthly.
func evaluateCostPlus(p *profile.NormalizedCostProfile, cfg catalog.PricingModelConfig, cat *catalog.CatalogVersion) (*ProposedCostBreakdown, error) {
	b := &ProposedCostBreakdown{}

	passThrough(b, p, cfg, cat)

	markup := cfg.Rounding.Apply(p.MonthlyVolume.Mul(cfg.MarkupBps.Rate()))
	b.MarkupCost = b.Trace.Add(TraceEntry{
		FeeItemID: cfg.ID + ":markup",
		Label:     "Processor markup",
		Inputs: inputs(
			"monthly_volume", p.MonthlyVolume.String(),
			"markup_bps", cfg.MarkupBps.Rate().String(),
		),
		Amount: markup,
	})

	cardBrand := cfg.Rounding.Apply(p.MonthlyVolume.Mul(cfg.CardBrandBps.Rate()))
	b.MarkupCost = b.MarkupCost.Add(b.Trace.Add(TraceEntry{
		FeeItemID: cfg.ID + ":card_brand",
		Label:     "Card brand fee",
		Inputs: inputs(
			"monthly_volume", p.MonthlyVolume.String(),
			"card_brand_bps", cfg.CardBrandBps.Rate().String(),
		),
		Amount: cardBrand,
	}))

	perItemAndMonthly(b, p, cfg)
	return b, nil
}
