/*
Package engine provides the pure earnings-calculation core.

PURPOSE:
  This package contains the stateless components every other layer is built
  around: shift duration from wall-clock times (with overnight wraparound),
  estimated earnings under the hourly/daily rate matrix, and pay-period
  boundary resolution for weekly and biweekly cycles.

KEY CONCEPTS:
  - Settings:   Immutable per-user pay configuration (rates, guarantees,
                overtime, period cadence)
  - WorkedSpan: A date plus start/end clock times for one shift
  - Period:     An inclusive [Start, End] pay-period window

DESIGN PRINCIPLES:
  1. Totality: every function returns a value. Malformed temporal input
     degrades to zero instead of erroring; the dashboard must never crash
     on partial data.
  2. Precision: all money math uses decimal.Decimal, never float64.
  3. Purity: no I/O, no clocks except where "now" is injected, no state.
     Callers invoke these functions once per shift in a list without
     coordination.

SEE ALSO:
  - duration.go: WorkedSpan and hour calculation
  - earnings.go: The rate/day-type/overtime/guarantee matrix
  - period.go:   Weekly and biweekly period resolution
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PAYMENT AND PERIOD ENUMS
// =============================================================================

// PaymentType selects how a driver is paid.
type PaymentType string

const (
	PayHourly PaymentType = "hourly"
	PayDaily  PaymentType = "daily"
)

// PeriodType selects the settlement cadence.
type PeriodType string

const (
	PeriodWeekly   PeriodType = "weekly"
	PeriodBiweekly PeriodType = "biweekly"
)

// =============================================================================
// SETTINGS - Per-user pay configuration
// =============================================================================

// Settings governs all earnings and period calculations for one user.
// It is a value type: callers load it once at the boundary (substituting
// DefaultSettings when no record exists) and pass it by value from there on.
type Settings struct {
	PaymentType PaymentType

	HourlyRateWeekday  decimal.Decimal
	HourlyRateSaturday decimal.Decimal
	HourlyRateSunday   decimal.Decimal

	DailyRateWeekday  decimal.Decimal
	DailyRateSaturday decimal.Decimal
	DailyRateSunday   decimal.Decimal

	// GuaranteedDay tops a short day up to a minimum payout.
	GuaranteedDay      bool
	MinHoursGuaranteed decimal.Decimal

	OvertimeStartHours decimal.Decimal
	OvertimeMultiplier decimal.Decimal

	PeriodType PeriodType

	// PeriodStartDay is carried in the model (1 = Monday) but the weekly
	// resolver currently anchors to Monday regardless. Kept as data until
	// that question is settled.
	PeriodStartDay int

	// PeriodCycleRef anchors biweekly cycle boundaries (YYYY-MM-DD).
	// Empty means unset; biweekly resolution then falls back to weekly.
	PeriodCycleRef string
}

// DefaultSettings returns the documented default record substituted when a
// user has no stored settings.
func DefaultSettings() Settings {
	return Settings{
		PaymentType:        PayHourly,
		HourlyRateWeekday:  decimal.RequireFromString("18.50"),
		HourlyRateSaturday: decimal.RequireFromString("22.00"),
		HourlyRateSunday:   decimal.RequireFromString("24.00"),
		DailyRateWeekday:   decimal.NewFromInt(160),
		DailyRateSaturday:  decimal.NewFromInt(180),
		DailyRateSunday:    decimal.NewFromInt(200),
		GuaranteedDay:      true,
		MinHoursGuaranteed: decimal.NewFromInt(8),
		OvertimeStartHours: decimal.NewFromInt(10),
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
		PeriodType:         PeriodWeekly,
		PeriodStartDay:     1,
	}
}

// Validate checks a settings record once at the boundary. The core itself
// never validates; it assumes a record that passed here or came from
// DefaultSettings.
func (s Settings) Validate() error {
	switch s.PaymentType {
	case PayHourly, PayDaily:
	default:
		return fmt.Errorf("unknown payment_type %q", s.PaymentType)
	}

	switch s.PeriodType {
	case PeriodWeekly, PeriodBiweekly:
	default:
		return fmt.Errorf("unknown period_type %q", s.PeriodType)
	}

	rates := map[string]decimal.Decimal{
		"hourly_rate_weekday":      s.HourlyRateWeekday,
		"hourly_rate_saturday":     s.HourlyRateSaturday,
		"hourly_rate_sunday":       s.HourlyRateSunday,
		"daily_rate_weekday":       s.DailyRateWeekday,
		"daily_rate_saturday":      s.DailyRateSaturday,
		"daily_rate_sunday":        s.DailyRateSunday,
		"min_hours_guaranteed":     s.MinHoursGuaranteed,
		"overtime_start_hours":     s.OvertimeStartHours,
		"overtime_rate_multiplier": s.OvertimeMultiplier,
	}
	for name, v := range rates {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative, got %s", name, v)
		}
	}

	if s.PeriodCycleRef != "" {
		if _, err := time.ParseInLocation(dateLayout, s.PeriodCycleRef, time.UTC); err != nil {
			return fmt.Errorf("period_cycle_ref_date must be YYYY-MM-DD, got %q", s.PeriodCycleRef)
		}
	}

	return nil
}

// HourlyRate returns the day-type-matched hourly rate.
func (s Settings) HourlyRate(d DayType) decimal.Decimal {
	switch d {
	case DaySaturday:
		return s.HourlyRateSaturday
	case DaySunday:
		return s.HourlyRateSunday
	default:
		return s.HourlyRateWeekday
	}
}

// DailyRate returns the day-type-matched daily rate.
func (s Settings) DailyRate(d DayType) decimal.Decimal {
	switch d {
	case DaySaturday:
		return s.DailyRateSaturday
	case DaySunday:
		return s.DailyRateSunday
	default:
		return s.DailyRateWeekday
	}
}
