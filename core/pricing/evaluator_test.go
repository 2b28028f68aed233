package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func baseProfile() *profile.NormalizedCostProfile {
	return &profile.NormalizedCostProfile{
		ID:               "prof-1",
		TenantID:         "acme",
		MonthlyVolume:    d("100000"),
		TransactionCount: 2000,
		QualifiedRateBps: 190,
		Version:          "1",
	}
}

func emptyCatalog() *catalog.CatalogVersion {
	return &catalog.CatalogVersion{ID: "cat_test", TenantID: "acme"}
}

func TestEvaluateFlat(t *testing.T) {
	// $100,000 at 2.5% + 2,000 txns at $0.08 + $15 monthly = $2,675.00
	cfg := catalog.PricingModelConfig{
		ID:          "flat-1",
		Kind:        catalog.ModelFlat,
		FlatRateBps: 250,
		PerItemFee:  d("0.08"),
		MonthlyFee:  d("15"),
		Rounding:    money.DefaultRule(),
	}

	b, err := Evaluate(baseProfile(), cfg, emptyCatalog())
	require.NoError(t, err)

	assert.Equal(t, "2500.00", b.MarkupCost.StringFixed(2))
	assert.Equal(t, "160.00", b.PerItemCost.StringFixed(2))
	assert.Equal(t, "15.00", b.MonthlyCost.StringFixed(2))
	assert.Equal(t, "2675.00", b.Total.StringFixed(2))
	assert.True(t, b.PassThroughCost.IsZero())
	assert.False(t, b.AssumedBlendedPassThrough)

	// One trace entry per component, sum exact.
	assert.Len(t, b.Trace.Entries, 3)
	require.NoError(t, b.Trace.VerifyTotal("flat", b.Total))
}

func TestEvaluateCostPlusStatedInterchange(t *testing.T) {
	p := baseProfile()
	p.HasInterchange = true
	p.InterchangeTotal = d("1500")

	cfg := catalog.PricingModelConfig{
		ID:           "cp-1",
		Kind:         catalog.ModelCostPlus,
		MarkupBps:    25,
		CardBrandBps: 15,
		PerItemFee:   d("0.05"),
		MonthlyFee:   d("10"),
		Rounding:     money.DefaultRule(),
	}

	b, err := Evaluate(p, cfg, emptyCatalog())
	require.NoError(t, err)

	assert.Equal(t, "1500.00", b.PassThroughCost.StringFixed(2))
	// markup 0.25% of 100k + card brand 0.15% of 100k
	assert.Equal(t, "400.00", b.MarkupCost.StringFixed(2))
	assert.Equal(t, "100.00", b.PerItemCost.StringFixed(2))
	assert.Equal(t, "10.00", b.MonthlyCost.StringFixed(2))
	assert.Equal(t, "2010.00", b.Total.StringFixed(2))
	assert.False(t, b.AssumedBlendedPassThrough)
}

func TestEvaluateCostPlusBlendedFallback(t *testing.T) {
	// No interchange detail, no brand mix: the blended rate stands in and
	// the output is flagged as an assumption.
	p := baseProfile()

	cfg := catalog.PricingModelConfig{
		ID:        "cp-1",
		Kind:      catalog.ModelCostPlus,
		MarkupBps: 25,
		Rounding:  money.DefaultRule(),
	}

	b, err := Evaluate(p, cfg, emptyCatalog())
	require.NoError(t, err)

	// 1.90% of 100k
	assert.Equal(t, "1900.00", b.PassThroughCost.StringFixed(2))
	assert.True(t, b.AssumedBlendedPassThrough)

	var assumed *TraceEntry
	for i := range b.Trace.Entries {
		if b.Trace.Entries[i].Assumed {
			assumed = &b.Trace.Entries[i]
		}
	}
	require.NotNil(t, assumed, "blended fallback must be flagged in the trace")
	assert.Equal(t, "profile:blended_passthrough", assumed.FeeItemID)
}

func TestEvaluateCostPlusCatalogPassThrough(t *testing.T) {
	p := baseProfile()
	p.BrandVolumes = []profile.BrandVolume{
		{Brand: catalog.BrandVisa, Volume: d("60000")},
		{Brand: catalog.BrandMastercard, Volume: d("40000")},
	}
	p.InteracTxnCount = 500

	cat := emptyCatalog()
	cat.FeeItems = []catalog.FeeItem{
		{
			ID:       "ic-blend",
			Name:     "Interchange",
			Kind:     catalog.PercentOfVolume,
			Class:    catalog.ClassInterchange,
			RateBps:  150,
			Rounding: money.DefaultRule(),
		},
		{
			ID:        "interac-item",
			Name:      "Interac per-item",
			Kind:      catalog.PerItem,
			Class:     catalog.ClassInterchange,
			Amount:    d("0.04"),
			AppliesTo: catalog.AppliesTo{Brand: catalog.BrandInterac},
			Rounding:  money.DefaultRule(),
		},
	}

	cfg := catalog.PricingModelConfig{
		ID:       "cp-1",
		Kind:     catalog.ModelCostPlus,
		Rounding: money.DefaultRule(),
	}

	b, err := Evaluate(p, cfg, cat)
	require.NoError(t, err)

	// 1.50% of the full 100k plus $0.04 on 500 Interac transactions
	assert.Equal(t, "1520.00", b.PassThroughCost.StringFixed(2))
	assert.False(t, b.AssumedBlendedPassThrough)
}

func TestEvaluateZeroFeesAreTraced(t *testing.T) {
	// A zero per-item and zero monthly fee still get trace entries: the
	// audit must show what was considered.
	cfg := catalog.PricingModelConfig{
		ID:          "flat-1",
		Kind:        catalog.ModelFlat,
		FlatRateBps: 250,
		Rounding:    money.DefaultRule(),
	}

	b, err := Evaluate(baseProfile(), cfg, emptyCatalog())
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, e := range b.Trace.Entries {
		ids[e.FeeItemID] = true
	}
	assert.True(t, ids["flat-1:per_item"])
	assert.True(t, ids["flat-1:monthly"])
}

func TestEvaluateUnknownKind(t *testing.T) {
	cfg := catalog.PricingModelConfig{ID: "x", Kind: "subscription"}

	_, err := Evaluate(baseProfile(), cfg, emptyCatalog())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeUnsupportedModel))
}

func TestEvaluateMissingVolume(t *testing.T) {
	p := baseProfile()
	p.MonthlyVolume = decimal.Zero

	cfg := catalog.PricingModelConfig{ID: "flat-1", Kind: catalog.ModelFlat, FlatRateBps: 250}

	_, err := Evaluate(p, cfg, emptyCatalog())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeMissingInput))
}

func TestEvaluateTraceSumMatchesTotal(t *testing.T) {
	// Volumes chosen so components need rounding; the total must still be
	// the exact sum of the rounded parts.
	p := baseProfile()
	p.MonthlyVolume = d("98765.43")
	p.TransactionCount = 1234

	cfg := catalog.PricingModelConfig{
		ID:          "flat-1",
		Kind:        catalog.ModelFlat,
		FlatRateBps: 275,
		PerItemFee:  d("0.075"),
		MonthlyFee:  d("19.99"),
		Rounding:    money.DefaultRule(),
	}

	b, err := Evaluate(p, cfg, emptyCatalog())
	require.NoError(t, err)
	assert.True(t, b.Trace.Sum().Equal(b.Total))
}
