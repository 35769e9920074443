/*
earnings.go - Estimated earnings for one shift

PURPOSE:
  Applies the pay policy to a single worked span:
    payment type (hourly | daily)
  × day type     (weekday | Saturday | Sunday)
  × overtime beyond a start threshold
  × guaranteed-minimum top-up for short days

RULES (hourly):
  base     = hours × rate
  overtime = (hours − overtime_start) × (rate × multiplier − rate)
             -- the base term already pays overtime hours at rate;
                only the increment is added on the excess
  shortfall= (min_hours − hours) × rate when guaranteed and under minimum

RULES (daily):
  A guaranteed short day pays the flat day rate, nothing else.
  Otherwise the day rate, plus overtime on the excess hours. Overtime on
  day-rate shifts is always priced off the WEEKDAY hourly rate, whatever
  the shift's actual day type. That asymmetry is inherited behavior and
  is kept deliberately.

FAILURE SEMANTICS:
  Missing or unparseable date/start/end yields zero.

SEE ALSO:
  - duration.go: Hours() and DayType()
  - settings.go: Rate selection
*/
package engine

import "github.com/shopspring/decimal"

// Estimate computes the estimated earnings for one worked span under the
// given settings, rounded to two decimal places. It is pure: identical
// inputs always produce identical output.
func Estimate(span WorkedSpan, s Settings) decimal.Decimal {
	if _, _, ok := span.bounds(); !ok {
		return decimal.Zero
	}

	hours := span.Hours()
	day := span.DayType()

	var earnings decimal.Decimal
	if s.PaymentType == PayDaily {
		earnings = s.DailyRate(day)
		// A guaranteed short day pays the flat rate, unmodified.
		if !(s.GuaranteedDay && hours.LessThan(s.MinHoursGuaranteed)) {
			if hours.GreaterThan(s.OvertimeStartHours) {
				excess := hours.Sub(s.OvertimeStartHours)
				otRate := s.HourlyRateWeekday.Mul(s.OvertimeMultiplier)
				earnings = earnings.Add(excess.Mul(otRate))
			}
		}
	} else {
		rate := s.HourlyRate(day)
		earnings = hours.Mul(rate)

		if hours.GreaterThan(s.OvertimeStartHours) {
			excess := hours.Sub(s.OvertimeStartHours)
			increment := rate.Mul(s.OvertimeMultiplier).Sub(rate)
			earnings = earnings.Add(excess.Mul(increment))
		}

		if s.GuaranteedDay && hours.LessThan(s.MinHoursGuaranteed) {
			shortfall := s.MinHoursGuaranteed.Sub(hours)
			earnings = earnings.Add(shortfall.Mul(rate))
		}
	}

	return earnings.Round(2)
}
