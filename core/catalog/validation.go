package catalog

import (
	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

func defaultFeeRounding() money.RoundingRule {
	return money.DefaultRule()
}

// ValidateFeeItem checks a fee item record before it enters a store.
func ValidateFeeItem(item FeeItem) error {
	if item.ID == "" {
		return errors.Input("fee item missing id")
	}
	switch item.Kind {
	case PercentOfVolume:
		if item.RateBps < 0 {
			return errors.Newf(errors.TypeInput, "fee item %s: negative rate", item.ID)
		}
	case PerItem, Monthly, OneTime:
		if item.Amount.IsNegative() {
			return errors.Newf(errors.TypeInput, "fee item %s: negative amount", item.ID)
		}
	default:
		return errors.Newf(errors.TypeInput, "fee item %s: unknown kind %q", item.ID, item.Kind)
	}
	if item.Window.From.IsZero() {
		return errors.Newf(errors.TypeInput, "fee item %s: missing effective_from", item.ID)
	}
	if !item.Window.To.IsZero() && !item.Window.From.Before(item.Window.To) {
		return errors.Newf(errors.TypeInput, "fee item %s: effective_from must precede effective_to", item.ID)
	}
	if item.Rounding.Places < 0 || item.Rounding.Places > 8 {
		return errors.Newf(errors.TypeInput, "fee item %s: rounding places out of range", item.ID)
	}
	return nil
}

// ValidateDeviceItem checks a device catalog record.
func ValidateDeviceItem(item DeviceCatalogItem) error {
	if item.ID == "" {
		return errors.Input("device item missing id")
	}
	switch item.CostType {
	case DevicePurchase, DeviceMonthlyLease:
	default:
		return errors.Newf(errors.TypeInput, "device item %s: unknown cost type %q", item.ID, item.CostType)
	}
	if item.UnitCost.IsNegative() {
		return errors.Newf(errors.TypeInput, "device item %s: negative unit cost", item.ID)
	}
	if item.Window.From.IsZero() {
		return errors.Newf(errors.TypeInput, "device item %s: missing effective_from", item.ID)
	}
	return nil
}

// ValidateModelConfig checks a pricing model record.
func ValidateModelConfig(cfg PricingModelConfig) error {
	if cfg.ID == "" {
		return errors.Input("pricing model missing id")
	}
	switch cfg.Kind {
	case ModelCostPlus, ModelDiscountRate, ModelFlat:
	case ModelIPlus:
		if len(cfg.Tiers) == 0 && cfg.MarkupBps == 0 {
			return errors.Newf(errors.TypeInput, "pricing model %s: iplus needs tiers or a markup", cfg.ID)
		}
		var prev MarkupTier
		for i, t := range cfg.Tiers {
			unlimited := t.UpToVolume.IsZero()
			if unlimited && i != len(cfg.Tiers)-1 {
				return errors.Newf(errors.TypeInput, "pricing model %s: unlimited tier must be last", cfg.ID)
			}
			if i > 0 && !unlimited && t.UpToVolume.LessThanOrEqual(prev.UpToVolume) {
				return errors.Newf(errors.TypeInput, "pricing model %s: tiers must have ascending bounds", cfg.ID)
			}
			prev = t
		}
	default:
		return errors.UnsupportedModel(string(cfg.Kind))
	}
	if cfg.PerItemFee.IsNegative() || cfg.MonthlyFee.IsNegative() {
		return errors.Newf(errors.TypeInput, "pricing model %s: negative fee", cfg.ID)
	}
	return nil
}

// ValidateSurcharge checks a surcharge program record.
func ValidateSurcharge(cfg SurchargeProgramConfig) error {
	if cfg.ID == "" {
		return errors.Input("surcharge program missing id")
	}
	if cfg.SurchargeBps <= 0 {
		return errors.Newf(errors.TypeInput, "surcharge program %s: rate must be positive", cfg.ID)
	}
	if cfg.MonthlyCap.IsNegative() {
		return errors.Newf(errors.TypeInput, "surcharge program %s: negative cap", cfg.ID)
	}
	switch cfg.ReportingMode {
	case ReportGross, ReportNet, "":
	default:
		return errors.Newf(errors.TypeInput, "surcharge program %s: unknown reporting mode %q", cfg.ID, cfg.ReportingMode)
	}
	return nil
}

// validateWindowOverlaps rejects record sets where two versions of the
// same record share any effective instant. Versioning a record means
// closing the old window before opening the new one.
func validateWindowOverlaps[T any](records []T, id func(T) string, win func(T) EffectiveWindow, kind, tenantID string) error {
	byID := make(map[string][]EffectiveWindow)
	for _, r := range records {
		w := win(r)
		for _, prev := range byID[id(r)] {
			if prev.Overlaps(w) {
				return errors.CatalogConflict(kind, tenantID).
					WithContext("record_id", id(r))
			}
		}
		byID[id(r)] = append(byID[id(r)], w)
	}
	return nil
}
