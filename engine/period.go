/*
period.go - Pay-period boundary resolution

PURPOSE:
  Computes the inclusive [Start, End] window of the current pay period,
  and the window immediately preceding a given period start.

  Weekly:   a fixed 7-day window beginning the most recent Monday.
            PeriodStartDay exists in the settings model but resolution
            anchors to Monday regardless; see settings.go.
  Biweekly: 14-day cycles anchored permanently to a reference date,
            independent of calendar weeks. A biweekly configuration
            without a reference date silently resolves weekly.

  Starts are midnight; ends are the last instant of the final day
  (23:59:59.999).

SEE ALSO:
  - settings.go: PeriodType and the cycle reference date
*/
package engine

import (
	"math"
	"time"
)

// =============================================================================
// PERIOD
// =============================================================================

// Period is an inclusive pay-period window.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.Format(dateLayout) + ", " + p.End.Format(dateLayout) + "]"
}

// =============================================================================
// RESOLUTION
// =============================================================================

// CurrentPeriod resolves the pay period containing the present moment.
func CurrentPeriod(s Settings) Period {
	return CurrentPeriodAt(s, time.Now().UTC())
}

// CurrentPeriodAt resolves the pay period containing now. The instant is
// normalized to midnight before any arithmetic.
func CurrentPeriodAt(s Settings, now time.Time) Period {
	today := midnight(now)

	if s.PeriodType == PeriodBiweekly && s.PeriodCycleRef != "" {
		if ref, err := time.ParseInLocation(dateLayout, s.PeriodCycleRef, time.UTC); err == nil {
			return biweeklyPeriod(ref, today)
		}
	}
	return weeklyPeriod(today)
}

// PreviousPeriod returns the period immediately preceding one starting at
// currentStart. It is a pure function of its arguments: correct even when
// the caller supplies an arbitrary period start rather than the true
// current one.
func PreviousPeriod(s Settings, currentStart time.Time) Period {
	span := 7
	if s.PeriodType == PeriodBiweekly {
		span = 14
	}
	start := midnight(currentStart)
	return Period{
		Start: start.AddDate(0, 0, -span),
		End:   endOfDay(start.AddDate(0, 0, -1)),
	}
}

func weeklyPeriod(today time.Time) Period {
	// Monday = 0 days back, ..., Sunday = 6 days back.
	back := (int(today.Weekday()) + 6) % 7
	start := today.AddDate(0, 0, -back)
	return Period{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
}

func biweeklyPeriod(ref, today time.Time) Period {
	elapsed := int(math.Ceil(math.Abs(today.Sub(ref).Hours()) / 24))
	cycles := elapsed / 14
	start := ref.AddDate(0, 0, cycles*14)
	return Period{Start: start, End: endOfDay(start.AddDate(0, 0, 13))}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}
