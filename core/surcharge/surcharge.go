// Package surcharge evaluates the optional surcharge program overlay.
// Surcharge revenue is cardholder-funded and must stay a separate,
// clearly labeled line item; it never blends into processing cost.
package surcharge

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/pricing"
	"github.com/abhishekuniyalibyte/clover-calculator/core/profile"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// Result is the surcharge overlay output. An ineligible merchant gets a
// no-op result with the reason documented, not an error.
type Result struct {
	ProgramID string `json:"program_id"`
	Eligible  bool   `json:"eligible"`
	Reason    string `json:"reason,omitempty"`

	// Revenue is the monthly surcharge collected from cardholders,
	// bounded by the program cap.
	Revenue    decimal.Decimal `json:"revenue"`
	CapApplied bool            `json:"cap_applied,omitempty"`

	// ReportingMode is how the orchestrator folds revenue into savings.
	// Net mode REQUIRES the disclosure flag so downstream renderers show
	// the mandated disclaimers.
	ReportingMode      catalog.ReportingMode `json:"reporting_mode"`
	DisclosureRequired bool                  `json:"disclosure_required"`

	Trace pricing.Trace `json:"trace"`
}

// Evaluate checks program eligibility and computes the surcharge revenue
// line item. The proposed breakdown is accepted for contract symmetry
// with the other evaluators; surcharge math depends only on volume.
func Evaluate(p *profile.NormalizedCostProfile, cfg catalog.SurchargeProgramConfig, proposed *pricing.ProposedCostBreakdown) (*Result, error) {
	if p == nil {
		return nil, errors.Input("nil profile")
	}
	_ = proposed

	r := &Result{
		ProgramID:     cfg.ID,
		Revenue:       decimal.Zero,
		ReportingMode: cfg.ReportingMode,
	}
	if r.ReportingMode == "" {
		r.ReportingMode = catalog.ReportGross
	}
	r.DisclosureRequired = r.ReportingMode == catalog.ReportNet

	if reason := ineligibleReason(p, cfg.Eligibility); reason != "" {
		r.Reason = reason
		r.Trace.Add(pricing.TraceEntry{
			FeeItemID: cfg.ID + ":revenue",
			Label:     "Surcharge revenue (ineligible: " + reason + ")",
			Amount:    decimal.Zero,
		})
		return r, nil
	}
	r.Eligible = true

	revenue := cfg.Rounding.Apply(p.MonthlyVolume.Mul(cfg.SurchargeBps.Rate()))
	if cfg.MonthlyCap.IsPositive() && revenue.GreaterThan(cfg.MonthlyCap) {
		revenue = cfg.MonthlyCap
		r.CapApplied = true
	}
	r.Revenue = r.Trace.Add(pricing.TraceEntry{
		FeeItemID: cfg.ID + ":revenue",
		Label:     "Surcharge revenue",
		Inputs: map[string]string{
			"monthly_volume": p.MonthlyVolume.String(),
			"surcharge_rate": cfg.SurchargeBps.Rate().String(),
			"monthly_cap":    cfg.MonthlyCap.String(),
		},
		Amount: revenue,
	})
	return r, nil
}

// ineligibleReason returns a human-readable reason, or "" when eligible.
func ineligibleReason(p *profile.NormalizedCostProfile, e catalog.SurchargeEligibility) string {
	if len(e.MCCs) > 0 && !containsString(e.MCCs, p.MCC) {
		return fmt.Sprintf("MCC %s is not in the program's eligible list", p.MCC)
	}
	if len(e.States) > 0 && !containsString(e.States, p.State) {
		return fmt.Sprintf("state %s does not permit the program", p.State)
	}
	if len(e.Brands) > 0 {
		matched := false
		for _, bv := range p.BrandVolumes {
			for _, b := range e.Brands {
				if bv.Brand == b && bv.Volume.IsPositive() {
					matched = true
				}
			}
		}
		if !matched {
			return "no volume on program-eligible card brands"
		}
	}
	return ""
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
