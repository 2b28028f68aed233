package snapshot

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhishekuniyalibyte/clover-calculator/core/engine"
	"github.com/abhishekuniyalibyte/clover-calculator/core/pricing"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testComparison() *engine.ComparisonResult {
	return &engine.ComparisonResult{
		TenantID:       "acme",
		ProfileID:      "prof-1",
		ProfileVersion: "1",
		CatalogVersion: "cat_abc123",
		Proposed: &pricing.ProposedCostBreakdown{
			ModelKind: "flat",
			ConfigID:  "flat-1",
			Total:     d("2675.00"),
		},
		CurrentTotal:   d("3125.00"),
		ProposedTotal:  d("2675.00"),
		NetSavings:     d("450.00"),
		PercentSavings: d("14.40"),
		PercentDefined: true,
		Timeframes: []engine.TimeframeRow{
			{Label: "monthly", CurrentCost: d("3125.00"), ProposedCost: d("2675.00"), Savings: d("450.00")},
			{Label: "yearly", CurrentCost: d("37500.00"), ProposedCost: d("32100.00"), Savings: d("5400.00")},
		},
		Convention: engine.ThirtyDayMonth,
	}
}

func TestBuildSealsSnapshot(t *testing.T) {
	snap, err := NewBuilder(testComparison()).
		WithTemplateVersion("tmpl-3").
		Build()
	require.NoError(t, err)

	assert.True(t, snap.Sealed())
	assert.True(t, strings.HasPrefix(string(snap.ID), "snap_"))
	assert.NotEmpty(t, snap.ContentHash)
	assert.Equal(t, "acme", snap.TenantID)
	assert.Equal(t, "tmpl-3", snap.TemplateVersion)
	assert.False(t, snap.CreatedAt.IsZero())
	require.NoError(t, snap.Verify())
}

func TestBuildIsDeterministic(t *testing.T) {
	// Identical inputs produce identical identity even when built at
	// different times: timestamps are metadata, never identity.
	clock1 := func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	clock2 := func() time.Time { return time.Date(2026, 8, 27, 16, 30, 0, 0, time.UTC) }

	snap1, err := NewBuilder(testComparison()).WithClock(clock1).Build()
	require.NoError(t, err)
	snap2, err := NewBuilder(testComparison()).WithClock(clock2).Build()
	require.NoError(t, err)

	assert.Equal(t, snap1.ID, snap2.ID)
	assert.Equal(t, snap1.ContentHash, snap2.ContentHash)
	assert.NotEqual(t, snap1.CreatedAt, snap2.CreatedAt)
}

func TestBuildIdentityChangesWithContent(t *testing.T) {
	snap1, err := NewBuilder(testComparison()).Build()
	require.NoError(t, err)

	changed := testComparison()
	changed.NetSavings = d("451.00")
	snap2, err := NewBuilder(changed).Build()
	require.NoError(t, err)

	assert.NotEqual(t, snap1.ID, snap2.ID)
	assert.NotEqual(t, snap1.ContentHash, snap2.ContentHash)
}

func TestBuildIdentityIncludesTemplateAndSupersedes(t *testing.T) {
	base, err := NewBuilder(testComparison()).Build()
	require.NoError(t, err)

	withTmpl, err := NewBuilder(testComparison()).WithTemplateVersion("tmpl-9").Build()
	require.NoError(t, err)
	assert.NotEqual(t, base.ID, withTmpl.ID)

	correction, err := NewBuilder(testComparison()).WithSupersedes(base.ID).Build()
	require.NoError(t, err)
	assert.NotEqual(t, base.ID, correction.ID)
	assert.Equal(t, base.ID, correction.Supersedes)
}

func TestVerifyDetectsTampering(t *testing.T) {
	snap, err := NewBuilder(testComparison()).Build()
	require.NoError(t, err)
	require.NoError(t, snap.Verify())

	snap.Comparison.NetSavings = d("9999.00")
	err = snap.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hash mismatch")
}

func TestBuildRequiresComparison(t *testing.T) {
	_, err := NewBuilder(nil).Build()
	require.Error(t, err)
}

func TestChartRows(t *testing.T) {
	snap, err := NewBuilder(testComparison()).Build()
	require.NoError(t, err)

	rows := snap.ChartRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "monthly", rows[0].Label)
	assert.Equal(t, "5400.00", rows[1].Savings.StringFixed(2))
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	snap, err := NewBuilder(testComparison()).WithTemplateVersion("tmpl-3").Build()
	require.NoError(t, err)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var got PricingSnapshot
	require.NoError(t, json.Unmarshal(data, &got))
	got.sealed = true

	// The decoded record hashes back to the same identity.
	require.NoError(t, got.Verify())
	assert.Equal(t, snap.ID, got.ID)
	assert.True(t, got.Comparison.NetSavings.Equal(snap.Comparison.NetSavings))
}
