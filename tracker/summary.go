/*
summary.go - Pay-period aggregation

PURPOSE:
  Folds a user's shifts into the totals the dashboard shows for one pay
  period: hours, estimated earnings, distance, cage counts. When the
  period has a recorded settlement, the summary also carries the variance
  between the actual payslip amount and the estimate.

  Shifts whose date does not parse are skipped rather than failing the
  whole summary, matching the engine's degrade-to-zero posture.
*/
package tracker

import (
	"github.com/shopspring/decimal"

	"github.com/haulhq/driverpay/engine"
)

// PeriodSummary is the aggregate view of one pay period.
type PeriodSummary struct {
	Period engine.Period

	ShiftCount    int
	TotalHours    decimal.Decimal
	TotalEarnings decimal.Decimal
	TotalKM       float64

	CagesDelivered int
	CagesReturned  int

	// Settlement and Variance are set only when the period has a
	// recorded settlement. Variance = actual − estimated; positive means
	// the payslip paid more than the system estimated.
	Settlement *Settlement
	Variance   *decimal.Decimal
}

// Summarize aggregates the shifts whose date falls inside the period.
// Hours and earnings are recomputed from the supplied settings, never
// read from storage.
func Summarize(shifts []Shift, settings engine.Settings, period engine.Period) PeriodSummary {
	sum := PeriodSummary{
		Period:        period,
		TotalHours:    decimal.Zero,
		TotalEarnings: decimal.Zero,
	}

	for _, sh := range shifts {
		day, ok := sh.Day()
		if !ok || !period.Contains(day) {
			continue
		}

		sum.ShiftCount++
		sum.TotalHours = sum.TotalHours.Add(sh.Hours())
		sum.TotalEarnings = sum.TotalEarnings.Add(sh.Earnings(settings))
		sum.TotalKM += sh.DistanceKM()

		delivered, returned := sh.CageCounts()
		sum.CagesDelivered += delivered
		sum.CagesReturned += returned
	}

	return sum
}

// WithSettlement attaches a settlement and its variance to the summary.
// A nil settlement leaves the summary untouched.
func (ps PeriodSummary) WithSettlement(st *Settlement) PeriodSummary {
	if st == nil {
		return ps
	}
	variance := st.ActualAmount.Sub(ps.TotalEarnings)
	ps.Settlement = st
	ps.Variance = &variance
	return ps
}
