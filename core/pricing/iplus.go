package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
)

// evaluateIPlus: interchange pass-through + one bundled markup selected
// from tiered volume bands. No separate card brand fee.
func evaluateIPlus(p *profile.NormalizedCostProfile, cfg catalog.PricingModelConfig, cat *catalog.CatalogVersion) (*ProposedCostBreakdown, error) {
	b := &ProposedCostBreakdown{}

	passThrough(b, p, cfg, cat)

	rate, tierLabel := selectMarkupTier(p.MonthlyVolume, cfg)
	markup := cfg.Rounding.Apply(p.MonthlyVolume.Mul(rate.Rate()))
	b.MarkupCost = b.Trace.Add(TraceEntry{
		FeeItemID: cfg.ID + ":markup",
		Label:     "Bundled markup (" + tierLabel + ")",
		Inputs: inputs(
			"monthly_volume", p.MonthlyVolume.String(),
			"markup_bps", rate.Rate().String(),
			"tier", tierLabel,
		),
		Amount: markup,
	})

	perItemAndMonthly(b, p, cfg)
	return b, nil
}

// selectMarkupTier walks the bands in ascending order and picks the first
// whose bound covers the volume. A volume landing exactly on a boundary
// belongs to the lower (cheaper) band.
func selectMarkupTier(volume decimal.Decimal, cfg catalog.PricingModelConfig) (money.BasisPoints, string) {
	if len(cfg.Tiers) == 0 {
		return cfg.MarkupBps, "flat"
	}
	for _, tier := range cfg.Tiers {
		if tier.UpToVolume.IsZero() || volume.LessThanOrEqual(tier.UpToVolume) {
			label := "up to " + tier.UpToVolume.String()
			if tier.UpToVolume.IsZero() {
				label = "unlimited"
			}
			return tier.MarkupBps, label
		}
	}
	// Volume exceeds every bounded band; the last band applies.
	last := cfg.Tiers[len(cfg.Tiers)-1]
	return last.MarkupBps, "above " + last.UpToVolume.String()
}
