package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/pricing"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
	"github.com/abhishekuniyalibyte/clover-calculator/core/surcharge"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// testProfile: $100k monthly volume, 2,000 transactions, currently paying
// 2.9% + $0.10/txn + $25/month = $3,125.00.
func testProfile() *profile.NormalizedCostProfile {
	return &profile.NormalizedCostProfile{
		ID:                 "prof-1",
		TenantID:           "acme",
		MonthlyVolume:      d("100000"),
		TransactionCount:   2000,
		CurrentRateBps:     290,
		CurrentPerItemFee:  d("0.10"),
		CurrentMonthlyFees: d("25"),
		Version:            "1",
	}
}

func flatConfig() catalog.PricingModelConfig {
	return catalog.PricingModelConfig{
		ID:          "flat-1",
		Kind:        catalog.ModelFlat,
		FlatRateBps: 250,
		PerItemFee:  d("0.08"),
		MonthlyFee:  d("15"),
	}
}

func testCatalog(t *testing.T, extra ...catalog.DeviceCatalogItem) *catalog.CatalogVersion {
	t.Helper()
	store := catalog.NewMemoryStore()
	cfg := flatConfig()
	cfg.Window = catalog.EffectiveWindow{From: date("2026-01-01")}
	store.AddPricingModels("acme", cfg)
	for _, dev := range extra {
		dev.Window = catalog.EffectiveWindow{From: date("2026-01-01")}
		store.AddDeviceItems("acme", dev)
	}

	r, err := catalog.NewResolver(store, 8)
	require.NoError(t, err)
	cat, err := r.Resolve("acme", date("2026-06-01"))
	require.NoError(t, err)
	return cat
}

func evaluateFlatProposal(t *testing.T, p *profile.NormalizedCostProfile, cat *catalog.CatalogVersion) *pricing.ProposedCostBreakdown {
	t.Helper()
	cfg, ok := cat.Model(catalog.ModelFlat)
	require.True(t, ok)
	proposed, err := pricing.Evaluate(p, cfg, cat)
	require.NoError(t, err)
	return proposed
}

func TestComputeFullComparison(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	result, err := New().Compute(p, cat, proposed, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "3125.00", result.CurrentTotal.StringFixed(2))
	assert.Equal(t, "2675.00", result.ProposedTotal.StringFixed(2))
	assert.Equal(t, "450.00", result.NetSavings.StringFixed(2))

	require.True(t, result.PercentDefined)
	assert.Equal(t, "14.40", result.PercentSavings.StringFixed(2))

	// No one-time costs: break-even is immediate.
	require.NotNil(t, result.BreakEvenMonths)
	assert.True(t, result.BreakEvenMonths.IsZero())

	assert.True(t, result.HasSufficientData)
	assert.Equal(t, cat.ID, result.CatalogVersion)
}

func TestComputeTimeframeProjections(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	result, err := New().Compute(p, cat, proposed, nil, nil, nil)
	require.NoError(t, err)

	rows := map[string]TimeframeRow{}
	for _, row := range result.Timeframes {
		rows[row.Label] = row
	}
	require.Len(t, rows, 5)

	// Savings = current - proposed on every row, no independent rounding.
	for label, row := range rows {
		assert.True(t, row.Savings.Equal(row.CurrentCost.Sub(row.ProposedCost)), label)
	}

	// daily = monthly/30 rounded once; weekly derives from the rounded
	// daily figure so weekly == daily*7 exactly.
	assert.Equal(t, "104.17", rows["daily"].CurrentCost.StringFixed(2))
	assert.True(t, rows["weekly"].CurrentCost.Equal(rows["daily"].CurrentCost.Mul(decimal.NewFromInt(7))))

	assert.Equal(t, "3125.00", rows["monthly"].CurrentCost.StringFixed(2))
	assert.Equal(t, "9375.00", rows["quarterly"].CurrentCost.StringFixed(2))
	assert.Equal(t, "37500.00", rows["yearly"].CurrentCost.StringFixed(2))
	assert.Equal(t, "5400.00", rows["yearly"].Savings.StringFixed(2))
}

func TestComputeZeroBaselineSentinel(t *testing.T) {
	// A profile with no current cost data still computes; the percent is
	// undefined, not an error and not a division fault.
	p := testProfile()
	p.CurrentRateBps = 0
	p.CurrentPerItemFee = decimal.Zero
	p.CurrentMonthlyFees = decimal.Zero

	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	result, err := New().Compute(p, cat, proposed, nil, nil, nil)
	require.NoError(t, err)

	assert.True(t, result.CurrentTotal.IsZero())
	assert.False(t, result.PercentDefined)
	assert.True(t, result.PercentSavings.IsZero())
	assert.Equal(t, "-2675.00", result.NetSavings.StringFixed(2))
	assert.False(t, result.HasSufficientData)
	assert.Contains(t, result.MissingFields, "current_rate_bps")
}

func TestComputeNegativeSavingsNotClamped(t *testing.T) {
	p := testProfile()
	p.CurrentRateBps = 100 // current: 1000 + 200 + 25 = 1225, cheaper than proposed

	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	fees := []OneTimeFee{{Name: "Setup", Amount: d("150")}}
	result, err := New().Compute(p, cat, proposed, nil, fees, nil)
	require.NoError(t, err)

	assert.True(t, result.NetSavings.IsNegative())
	assert.Nil(t, result.BreakEvenMonths, "no break-even when the proposal costs more")
}

func TestComputeDeviceCosts(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t,
		catalog.DeviceCatalogItem{
			ID: "clover-flex", Name: "Clover Flex",
			CostType: catalog.DevicePurchase, UnitCost: d("599"),
		},
		catalog.DeviceCatalogItem{
			ID: "saas-basic", Name: "SaaS plan",
			CostType: catalog.DeviceMonthlyLease, UnitCost: d("45"),
		},
	)
	proposed := evaluateFlatProposal(t, p, cat)

	selections := []DeviceSelection{
		{DeviceID: "clover-flex", Quantity: 2},
		{DeviceID: "saas-basic", Quantity: 1},
	}
	result, err := New().Compute(p, cat, proposed, selections, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "1198.00", result.Devices.OneTime.StringFixed(2))
	assert.Equal(t, "45.00", result.Devices.Monthly.StringFixed(2))
	assert.True(t, result.Devices.AmortizedMonthly.IsZero())

	// Lease enters the monthly total; purchase stays one-time.
	assert.Equal(t, "2720.00", result.ProposedTotal.StringFixed(2))
	assert.Equal(t, "1198.00", result.OneTime.DevicePurchase.StringFixed(2))
	assert.Equal(t, "405.00", result.NetSavings.StringFixed(2))

	// 1198 / 405 per month
	require.NotNil(t, result.BreakEvenMonths)
	assert.Equal(t, "2.96", result.BreakEvenMonths.StringFixed(2))
}

func TestComputeDeviceAmortization(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t, catalog.DeviceCatalogItem{
		ID: "clover-flex", Name: "Clover Flex",
		CostType: catalog.DevicePurchase, UnitCost: d("600"),
	})
	proposed := evaluateFlatProposal(t, p, cat)

	eng := New()
	eng.AmortizationMonths = 12

	result, err := eng.Compute(p, cat, proposed, []DeviceSelection{{DeviceID: "clover-flex", Quantity: 1}}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "50.00", result.Devices.AmortizedMonthly.StringFixed(2))
	// Amortized purchases leave the one-time side entirely.
	assert.True(t, result.OneTime.DevicePurchase.IsZero())
	assert.Equal(t, "2725.00", result.ProposedTotal.StringFixed(2))
}

func TestComputeUnknownDevice(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	_, err := New().Compute(p, cat, proposed, []DeviceSelection{{DeviceID: "ghost", Quantity: 1}}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestComputeOneTimeFees(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	fees := []OneTimeFee{
		{Name: "Setup", Amount: d("150")},
		{Name: "Rush install", Amount: d("75"), Optional: true},
	}
	result, err := New().Compute(p, cat, proposed, nil, fees, nil)
	require.NoError(t, err)

	assert.Equal(t, "150.00", result.OneTime.RequiredFees.StringFixed(2))
	assert.Equal(t, "75.00", result.OneTime.OptionalFees.StringFixed(2))
	// Optional fees are listed but excluded from the break-even base.
	assert.Equal(t, "150.00", result.OneTime.Total.StringFixed(2))

	require.NotNil(t, result.BreakEvenMonths)
	assert.Equal(t, "0.33", result.BreakEvenMonths.StringFixed(2))
}

func TestComputeSurchargeNetMode(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	sur := &surcharge.Result{
		ProgramID:     "sur-1",
		Eligible:      true,
		Revenue:       d("300"),
		ReportingMode: catalog.ReportNet,
	}
	result, err := New().Compute(p, cat, proposed, nil, nil, sur)
	require.NoError(t, err)

	// Net reporting folds revenue into the proposed total: 2675 - 300.
	assert.Equal(t, "2375.00", result.ProposedTotal.StringFixed(2))
	assert.Equal(t, "750.00", result.NetSavings.StringFixed(2))

	// The exposed triple stays internally consistent, and the timeframe
	// rows project the same proposed figure.
	assert.True(t, result.NetSavings.Equal(result.CurrentTotal.Sub(result.ProposedTotal)))
	for _, row := range result.Timeframes {
		if row.Label == "monthly" {
			assert.True(t, row.ProposedCost.Equal(result.ProposedTotal))
			assert.True(t, row.Savings.Equal(result.NetSavings))
		}
	}
}

func TestComputeSurchargeGrossModeIgnoredInSavings(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	sur := &surcharge.Result{
		ProgramID:     "sur-1",
		Eligible:      true,
		Revenue:       d("300"),
		ReportingMode: catalog.ReportGross,
	}
	result, err := New().Compute(p, cat, proposed, nil, nil, sur)
	require.NoError(t, err)

	assert.Equal(t, "450.00", result.NetSavings.StringFixed(2))
	require.NotNil(t, result.Surcharge)
	assert.Equal(t, "300.00", result.Surcharge.Revenue.StringFixed(2))
}

func TestComputeExistingFeeKinds(t *testing.T) {
	p := testProfile()
	p.ExistingFees = []profile.ExistingFee{
		{Name: "PCI compliance", Kind: catalog.Monthly, Amount: d("9.95")},
		{Name: "Terminal lease", Kind: catalog.Monthly, Amount: d("30"), Quantity: d("2")},
		{Name: "Batch fee", Kind: catalog.PerItem, Amount: d("0.01")},
		{Name: "Old setup fee", Kind: catalog.OneTime, Amount: d("200")},
	}
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	result, err := New().Compute(p, cat, proposed, nil, nil, nil)
	require.NoError(t, err)

	// 9.95 + 30*2 + 0.01*2000; the one-time fee is sunk and excluded.
	assert.Equal(t, "89.95", result.Current.HardwareMonthly.StringFixed(2))
	assert.Equal(t, "3214.95", result.CurrentTotal.StringFixed(2))

	var sunk *pricing.TraceEntry
	for i := range result.Current.Trace.Entries {
		if result.Current.Trace.Entries[i].FeeItemID == "current:existing:Old setup fee" {
			sunk = &result.Current.Trace.Entries[i]
		}
	}
	require.NotNil(t, sunk, "sunk costs stay visible in the trace")
	assert.True(t, sunk.Amount.IsZero())
}

func TestComputeActualDaysConvention(t *testing.T) {
	p := testProfile()
	p.StatementPeriodDays = 31
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	eng := New()
	eng.Convention = ActualDays

	result, err := eng.Compute(p, cat, proposed, nil, nil, nil)
	require.NoError(t, err)

	for _, row := range result.Timeframes {
		if row.Label == "daily" {
			// 3125 / 31
			assert.Equal(t, "100.81", row.CurrentCost.StringFixed(2))
		}
	}
	assert.Equal(t, ActualDays, result.Convention)
}

func TestComputeActualDaysNeedsPeriodLength(t *testing.T) {
	p := testProfile()
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	eng := New()
	eng.Convention = ActualDays

	_, err := eng.Compute(p, cat, proposed, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestComputeCurrentTraceSumInvariant(t *testing.T) {
	p := testProfile()
	p.MonthlyVolume = d("98765.43")
	p.TransactionCount = 1234
	cat := testCatalog(t)
	proposed := evaluateFlatProposal(t, p, cat)

	result, err := New().Compute(p, cat, proposed, nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, result.Current.Trace.Sum().Equal(result.Current.Total))
}
