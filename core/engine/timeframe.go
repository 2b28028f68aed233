package engine

import (
	"github.com/shopspring/decimal"

	"github.com/abhishekuniyalibyte/clover-calculator/core/money"
	"github.com/abhishekuniyalibyte/clover-calculator/internal/errors"
)

// DayCountConvention selects how a monthly baseline projects to the other
// timeframes. The convention is stamped on every snapshot.
type DayCountConvention string

const (
	// ThirtyDayMonth divides the month by a flat 30 days.
	ThirtyDayMonth DayCountConvention = "thirty_day"

	// ActualDays divides by the statement period's real day count.
	ActualDays DayCountConvention = "actual_days"
)

// TimeframeRow is the exact tuple the charting/reporting collaborator
// consumes. One row per timeframe label.
type TimeframeRow struct {
	Label        string          `json:"label"`
	CurrentCost  decimal.Decimal `json:"current_cost"`
	ProposedCost decimal.Decimal `json:"proposed_cost"`
	Savings      decimal.Decimal `json:"savings"`
}

// projectTimeframes expands monthly current/proposed totals into the five
// reporting timeframes. Daily is rounded once; weekly derives from the
// rounded daily figure so weekly == daily*7 holds exactly. Quarterly and
// yearly are exact multiples of the monthly figure.
func projectTimeframes(current, proposed decimal.Decimal, conv DayCountConvention, periodDays int, rule money.RoundingRule) ([]TimeframeRow, error) {
	days := decimal.NewFromInt(30)
	switch conv {
	case ThirtyDayMonth, "":
	case ActualDays:
		if periodDays <= 0 {
			return nil, errors.Input("actual-days convention needs the statement period length")
		}
		days = decimal.NewFromInt(int64(periodDays))
	default:
		return nil, errors.Newf(errors.TypeInput, "unknown day-count convention %q", conv)
	}

	seven := decimal.NewFromInt(7)
	three := decimal.NewFromInt(3)
	twelve := decimal.NewFromInt(12)

	curDaily := rule.Apply(current.Div(days))
	propDaily := rule.Apply(proposed.Div(days))

	rows := []TimeframeRow{
		{Label: "daily", CurrentCost: curDaily, ProposedCost: propDaily},
		{Label: "weekly", CurrentCost: curDaily.Mul(seven), ProposedCost: propDaily.Mul(seven)},
		{Label: "monthly", CurrentCost: current, ProposedCost: proposed},
		{Label: "quarterly", CurrentCost: current.Mul(three), ProposedCost: proposed.Mul(three)},
		{Label: "yearly", CurrentCost: current.Mul(twelve), ProposedCost: proposed.Mul(twelve)},
	}
	for i := range rows {
		rows[i].Savings = rows[i].CurrentCost.Sub(rows[i].ProposedCost)
	}
	return rows, nil
}
