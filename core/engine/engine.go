// Package engine orchestrates a full cost comparison: current processor
// costs vs a proposed pricing model, device/SaaS costs, the optional
// surcharge overlay, savings, and timeframe projections. Pure computation
// over immutable inputs; persistence belongs to the snapshot store.
package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
	"github.com/abhishekuniyalibyte/clover-calculator/core/pricing"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
	"github.com/abhishekuniyalibyte/clover-calculator/core/surcharge"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/logging"
)

// DeviceSelection picks a device catalog entry and a quantity.
type DeviceSelection struct {
	DeviceID string `json:"device_id"`
	Quantity int64  `json:"quantity"`
}

// OneTimeFee is a setup/onboarding fee attached to the proposal.
type OneTimeFee struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Optional bool            `json:"optional,omitempty"`
}

// CurrentCostBreakdown is what the merchant pays today, composed with the
// same fee primitives as the proposal side.
type CurrentCostBreakdown struct {
	ProcessingCost  decimal.Decimal `json:"processing_cost"`
	PerItemCost     decimal.Decimal `json:"per_item_cost"`
	MonthlyFees     decimal.Decimal `json:"monthly_fees"`
	HardwareMonthly decimal.Decimal `json:"hardware_monthly"`
	Total           decimal.Decimal `json:"total"`
	Trace           pricing.Trace   `json:"trace"`
}

// DeviceCosts aggregates the proposed device/SaaS selections.
type DeviceCosts struct {
	Monthly          decimal.Decimal `json:"monthly"`
	OneTime          decimal.Decimal `json:"one_time"`
	AmortizedMonthly decimal.Decimal `json:"amortized_monthly"`
	Trace            pricing.Trace   `json:"trace"`
}

// OneTimeCosts splits required and optional one-time fees.
type OneTimeCosts struct {
	DevicePurchase decimal.Decimal `json:"device_purchase"`
	RequiredFees   decimal.Decimal `json:"required_fees"`
	OptionalFees   decimal.Decimal `json:"optional_fees"`
	Total          decimal.Decimal `json:"total"`
}

// ComparisonResult is the orchestrator output consumed by the snapshot
// builder and, through it, the reporting collaborators.
type ComparisonResult struct {
	TenantID       string            `json:"tenant_id"`
	ProfileID      string            `json:"profile_id"`
	ProfileVersion string            `json:"profile_version"`
	CatalogVersion catalog.VersionID `json:"catalog_version"`

	Current   CurrentCostBreakdown           `json:"current"`
	Proposed  *pricing.ProposedCostBreakdown `json:"proposed"`
	Devices   DeviceCosts                    `json:"devices"`
	Surcharge *surcharge.Result              `json:"surcharge,omitempty"`
	OneTime   OneTimeCosts                   `json:"one_time"`

	CurrentTotal decimal.Decimal `json:"current_total"`

	// ProposedTotal includes device monthly and amortized costs and, under
	// net surcharge reporting, the surcharge revenue offset. NetSavings is
	// always CurrentTotal - ProposedTotal, and the timeframe rows project
	// the same pair.
	ProposedTotal decimal.Decimal `json:"proposed_total"`
	NetSavings    decimal.Decimal `json:"net_savings"`

	// PercentSavings is undefined when the baseline is zero; the guard
	// sentinel is PercentDefined=false, never an arithmetic fault.
	PercentSavings decimal.Decimal `json:"percent_savings"`
	PercentDefined bool            `json:"percent_defined"`

	// BreakEvenMonths is unset when monthly savings are not positive.
	BreakEvenMonths *decimal.Decimal `json:"break_even_months,omitempty"`

	Timeframes []TimeframeRow     `json:"timeframes"`
	Convention DayCountConvention `json:"day_count_convention"`

	HasSufficientData bool     `json:"has_sufficient_data"`
	MissingFields     []string `json:"missing_fields,omitempty"`
}

// Engine holds the orchestration policy knobs. Zero value is usable:
// 30-day months, no amortization.
type Engine struct {
	Convention DayCountConvention

	// AmortizationMonths spreads device one-time costs into the proposed
	// monthly total when positive. Zero reports one-time costs separately
	// with a break-even figure instead.
	AmortizationMonths int

	Rounding money.RoundingRule

	log *zap.Logger
}

// New creates an engine with the default policy.
func New() *Engine {
	return &Engine{
		Convention: ThirtyDayMonth,
		Rounding:   money.DefaultRule(),
		log:        logging.Named("engine"),
	}
}

// Compute runs the full comparison. The proposed breakdown and surcharge
// result arrive pre-computed from their evaluators; this step owns the
// current-cost estimate, device costs, savings, and projections.
func (e *Engine) Compute(
	p *profile.NormalizedCostProfile,
	cat *catalog.CatalogVersion,
	proposed *pricing.ProposedCostBreakdown,
	deviceSelections []DeviceSelection,
	oneTimeFees []OneTimeFee,
	sur *surcharge.Result,
) (*ComparisonResult, error) {
	if p == nil || cat == nil || proposed == nil {
		return nil, errors.Input("profile, catalog version and proposed breakdown are required")
	}
	rule := e.Rounding
	if rule.IsZero() {
		rule = money.DefaultRule()
	}

	current, err := e.currentCosts(p, rule)
	if err != nil {
		return nil, err
	}

	devices, err := e.deviceCosts(cat, deviceSelections, rule)
	if err != nil {
		return nil, err
	}

	oneTime := e.oneTimeCosts(devices, oneTimeFees, rule)

	proposedTotal := proposed.Total.Add(devices.Monthly).Add(devices.AmortizedMonthly)

	// Surcharge revenue enters the proposed total only under net
	// reporting, so NetSavings == CurrentTotal - ProposedTotal holds for
	// every consumer. The revenue line stays separate either way.
	if sur != nil && sur.Eligible && sur.ReportingMode == catalog.ReportNet {
		proposedTotal = proposedTotal.Sub(sur.Revenue)
	}

	currentTotal := current.Total
	netSavings := currentTotal.Sub(proposedTotal)

	result := &ComparisonResult{
		TenantID:       p.TenantID,
		ProfileID:      p.ID,
		ProfileVersion: p.Version,
		CatalogVersion: cat.ID,
		Current:        current,
		Proposed:       proposed,
		Devices:        devices,
		Surcharge:      sur,
		OneTime:        oneTime,
		CurrentTotal:   currentTotal,
		ProposedTotal:  proposedTotal,
		NetSavings:     netSavings,
		Convention:     e.convention(),
	}

	// DivisionByZeroGuard: a zero baseline yields the undefined sentinel.
	if currentTotal.IsPositive() {
		hundred := decimal.NewFromInt(100)
		result.PercentSavings = rule.Apply(netSavings.Div(currentTotal).Mul(hundred))
		result.PercentDefined = true
	}

	if oneTime.Total.IsZero() {
		zero := decimal.Zero
		result.BreakEvenMonths = &zero
	} else if netSavings.IsPositive() {
		be := rule.Apply(oneTime.Total.Div(netSavings))
		result.BreakEvenMonths = &be
	}

	result.Timeframes, err = projectTimeframes(currentTotal, proposedTotal, e.convention(), p.StatementPeriodDays, rule)
	if err != nil {
		return nil, err
	}

	result.MissingFields = p.MissingFields(proposed.ModelKind)
	result.HasSufficientData = len(result.MissingFields) == 0

	e.log.Debug("comparison computed",
		zap.String("profile", p.ID),
		zap.String("catalog", string(cat.ID)),
		zap.String("current_total", currentTotal.String()),
		zap.String("proposed_total", proposedTotal.String()),
		zap.String("net_savings", netSavings.String()))
	return result, nil
}

func (e *Engine) convention() DayCountConvention {
	if e.Convention == "" {
		return ThirtyDayMonth
	}
	return e.Convention
}

// currentCosts composes the merchant's present monthly spend with the
// same fee primitives the evaluators use, one trace entry per component.
func (e *Engine) currentCosts(p *profile.NormalizedCostProfile, rule money.RoundingRule) (CurrentCostBreakdown, error) {
	var c CurrentCostBreakdown

	currentRate := decimal.New(p.CurrentRateBps, -4)
	c.ProcessingCost = c.Trace.Add(pricing.TraceEntry{
		FeeItemID: "current:processing",
		Label:     "Current processing cost",
		Inputs: map[string]string{
			"monthly_volume": p.MonthlyVolume.String(),
			"effective_rate": currentRate.String(),
		},
		Amount: rule.Apply(p.MonthlyVolume.Mul(currentRate)),
	})

	count := decimal.NewFromInt(p.TransactionCount)
	c.PerItemCost = c.Trace.Add(pricing.TraceEntry{
		FeeItemID: "current:per_item",
		Label:     "Current per-transaction fees",
		Inputs: map[string]string{
			"per_item_fee":      p.CurrentPerItemFee.String(),
			"transaction_count": count.String(),
		},
		Amount: rule.Apply(p.CurrentPerItemFee.Mul(count)),
	})

	c.MonthlyFees = c.Trace.Add(pricing.TraceEntry{
		FeeItemID: "current:monthly",
		Label:     "Current monthly fees",
		Amount:    rule.Apply(p.CurrentMonthlyFees),
	})

	for _, fee := range p.ExistingFees {
		var amount decimal.Decimal
		switch fee.Kind {
		case catalog.PercentOfVolume:
			amount = rule.Apply(p.MonthlyVolume.Mul(decimal.New(fee.RateBps, -4)))
		case catalog.PerItem:
			amount = rule.Apply(fee.Amount.Mul(count))
		case catalog.Monthly:
			qty := fee.Quantity
			if qty.IsZero() {
				qty = decimal.NewFromInt(1)
			}
			amount = rule.Apply(fee.Amount.Mul(qty))
		case catalog.OneTime:
			// Sunk cost; considered but excluded from the monthly baseline.
			amount = decimal.Zero
		default:
			return c, errors.Newf(errors.TypeInput, "existing fee %q: unknown kind %q", fee.Name, fee.Kind)
		}
		c.HardwareMonthly = c.HardwareMonthly.Add(c.Trace.Add(pricing.TraceEntry{
			FeeItemID: "current:existing:" + fee.Name,
			Label:     fee.Name,
			Amount:    amount,
		}))
	}

	c.Total = c.ProcessingCost.Add(c.PerItemCost).Add(c.MonthlyFees).Add(c.HardwareMonthly)
	if err := c.Trace.VerifyTotal("current costs", c.Total); err != nil {
		return c, err
	}
	return c, nil
}

// deviceCosts prices the proposed device/SaaS selections from the
// resolved catalog. Unknown device IDs are caller errors.
func (e *Engine) deviceCosts(cat *catalog.CatalogVersion, selections []DeviceSelection, rule money.RoundingRule) (DeviceCosts, error) {
	var d DeviceCosts
	for _, sel := range selections {
		item, ok := cat.Device(sel.DeviceID)
		if !ok {
			return d, errors.NotFound("device catalog item", sel.DeviceID)
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		amount := rule.Apply(item.UnitCost.Mul(decimal.NewFromInt(qty)))
		entry := pricing.TraceEntry{
			FeeItemID: item.ID,
			Label:     item.Name,
			Inputs: map[string]string{
				"unit_cost": item.UnitCost.String(),
				"quantity":  decimal.NewFromInt(qty).String(),
			},
			Amount: amount,
		}
		switch item.CostType {
		case catalog.DeviceMonthlyLease:
			d.Monthly = d.Monthly.Add(d.Trace.Add(entry))
		case catalog.DevicePurchase:
			d.OneTime = d.OneTime.Add(d.Trace.Add(entry))
		default:
			return d, errors.Newf(errors.TypeInput, "device %s: unknown cost type %q", item.ID, item.CostType)
		}
	}

	if e.AmortizationMonths > 0 && d.OneTime.IsPositive() {
		months := decimal.NewFromInt(int64(e.AmortizationMonths))
		d.AmortizedMonthly = d.Trace.Add(pricing.TraceEntry{
			FeeItemID: "devices:amortization",
			Label:     "One-time device cost amortization",
			Inputs: map[string]string{
				"one_time_total": d.OneTime.String(),
				"months":         months.String(),
			},
			Amount: rule.Apply(d.OneTime.Div(months)),
		})
	}

	if err := d.Trace.VerifyTotal("device costs", d.Monthly.Add(d.OneTime).Add(d.AmortizedMonthly)); err != nil {
		return d, err
	}
	return d, nil
}

// oneTimeCosts folds required/optional one-time fees with the device
// purchase total. When amortization is active the purchases already flow
// through the monthly side and are excluded here.
func (e *Engine) oneTimeCosts(devices DeviceCosts, fees []OneTimeFee, rule money.RoundingRule) OneTimeCosts {
	var o OneTimeCosts
	for _, fee := range fees {
		amount := rule.Apply(fee.Amount)
		if fee.Optional {
			o.OptionalFees = o.OptionalFees.Add(amount)
		} else {
			o.RequiredFees = o.RequiredFees.Add(amount)
		}
	}
	if e.AmortizationMonths <= 0 {
		o.DevicePurchase = devices.OneTime
	}
	o.Total = o.DevicePurchase.Add(o.RequiredFees)
	return o
}
