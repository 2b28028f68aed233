package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
)

// evaluateDiscountRate: per-brand discount rates on the known card mix,
// falling back to a single blended discount rate on total volume; plus
// billback on the non-qualified share, per-item and monthly fees. There
// is no interchange separation in this model.
func evaluateDiscountRate(p *profile.NormalizedCostProfile, cfg catalog.PricingModelConfig) (*ProposedCostBreakdown, error) {
	b := &ProposedCostBreakdown{}

	if p.HasBrandMix() {
		brands := []struct {
			brand catalog.CardBrand
			rate  decimal.Decimal
			label string
		}{
			{catalog.BrandVisa, cfg.VisaRateBps.Rate(), "Visa discount rate"},
			{catalog.BrandMastercard, cfg.MastercardBps.Rate(), "Mastercard discount rate"},
			{catalog.BrandAmex, cfg.AmexRateBps.Rate(), "Amex discount rate"},
		}
		for _, br := range brands {
			vol := p.BrandVolumeFor(br.brand)
			amount := cfg.Rounding.Apply(vol.Mul(br.rate))
			b.MarkupCost = b.MarkupCost.Add(b.Trace.Add(TraceEntry{
				FeeItemID: cfg.ID + ":" + string(br.brand),
				Label:     br.label,
				Inputs: inputs(
					"brand_volume", vol.String(),
					"rate", br.rate.String(),
				),
				Amount: amount,
			}))
		}
	} else {
		amount := cfg.Rounding.Apply(p.MonthlyVolume.Mul(cfg.DiscountRateBps.Rate()))
		b.MarkupCost = b.Trace.Add(TraceEntry{
			FeeItemID: cfg.ID + ":discount",
			Label:     "Blended discount rate (no brand mix)",
			Inputs: inputs(
				"monthly_volume", p.MonthlyVolume.String(),
				"rate", cfg.DiscountRateBps.Rate().String(),
			),
			Amount:  amount,
			Assumed: true,
		})
	}

	// Billback on the non-qualified share of volume.
	nonQualVol := cfg.Rounding.Apply(p.MonthlyVolume.Mul(cfg.NonQualifiedBps.Rate()))
	billback := decimal.Zero
	if cfg.NonQualifiedBps > 0 && cfg.BillbackBps > 0 {
		billback = cfg.Rounding.Apply(nonQualVol.Mul(cfg.BillbackBps.Rate()))
	}
	b.MarkupCost = b.MarkupCost.Add(b.Trace.Add(TraceEntry{
		FeeItemID: cfg.ID + ":billback",
		Label:     "Billback on non-qualified volume",
		Inputs: inputs(
			"non_qualified_volume", nonQualVol.String(),
			"billback_rate", cfg.BillbackBps.Rate().String(),
		),
		Amount: billback,
	}))

	perItemAndMonthly(b, p, cfg)
	return b, nil
}
