package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
)

func tieredConfig() catalog.PricingModelConfig {
	return catalog.PricingModelConfig{
		ID:   "iplus-1",
		Kind: catalog.ModelIPlus,
		Tiers: []catalog.MarkupTier{
			{UpToVolume: d("25000"), MarkupBps: 45},
			{UpToVolume: d("100000"), MarkupBps: 35},
			{UpToVolume: d("0"), MarkupBps: 25},
		},
		Rounding: money.DefaultRule(),
	}
}

func TestSelectMarkupTier(t *testing.T) {
	cfg := tieredConfig()

	tests := []struct {
		name    string
		volume  string
		wantBps money.BasisPoints
	}{
		{"below first bound", "10000", 45},
		{"exactly on a boundary stays in the cheaper band", "25000", 45},
		{"just past the boundary", "25000.01", 35},
		{"second band upper boundary", "100000", 35},
		{"above all bounded bands hits the unlimited band", "500000", 25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := selectMarkupTier(d(tc.volume), cfg)
			assert.Equal(t, tc.wantBps, got)
		})
	}
}

func TestSelectMarkupTierNoUnlimitedBand(t *testing.T) {
	cfg := tieredConfig()
	cfg.Tiers = cfg.Tiers[:2]

	// Volume beyond every bounded band falls into the last band.
	got, label := selectMarkupTier(d("500000"), cfg)
	assert.Equal(t, money.BasisPoints(35), got)
	assert.Contains(t, label, "above")
}

func TestSelectMarkupTierFlatFallback(t *testing.T) {
	cfg := catalog.PricingModelConfig{
		ID:        "iplus-1",
		Kind:      catalog.ModelIPlus,
		MarkupBps: 40,
	}
	got, label := selectMarkupTier(d("100000"), cfg)
	assert.Equal(t, money.BasisPoints(40), got)
	assert.Equal(t, "flat", label)
}

func TestEvaluateIPlus(t *testing.T) {
	p := baseProfile()
	p.HasInterchange = true
	p.InterchangeTotal = d("1500")

	cfg := tieredConfig()
	cfg.PerItemFee = d("0.05")
	cfg.MonthlyFee = d("12")

	b, err := Evaluate(p, cfg, emptyCatalog())
	require.NoError(t, err)

	// 100k sits on the 100k boundary: 0.35% bundled markup applies.
	assert.Equal(t, "350.00", b.MarkupCost.StringFixed(2))
	assert.Equal(t, "1500.00", b.PassThroughCost.StringFixed(2))
	assert.Equal(t, "100.00", b.PerItemCost.StringFixed(2))
	assert.Equal(t, "12.00", b.MonthlyCost.StringFixed(2))
	assert.Equal(t, "1962.00", b.Total.StringFixed(2))
	require.NoError(t, b.Trace.VerifyTotal("iplus", b.Total))
}
