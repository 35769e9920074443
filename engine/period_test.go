package engine_test

import (
	"testing"
	"time"

	"github.com/haulhq/driverpay/engine"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lastInstant(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// =============================================================================
// WEEKLY RESOLUTION
// =============================================================================

func TestCurrentPeriodAt_Weekly_AlwaysStartsMonday(t *testing.T) {
	// GIVEN: Weekly settings
	// WHEN: Resolving the period for every day of a sample fortnight
	// THEN: The start is always a Monday and the end is start + 6 days

	s := engine.DefaultSettings()

	now := date(2024, time.January, 8)
	for i := 0; i < 14; i++ {
		p := engine.CurrentPeriodAt(s, now.AddDate(0, 0, i))

		if p.Start.Weekday() != time.Monday {
			t.Errorf("period start %s is a %s, want Monday", p.Start, p.Start.Weekday())
		}
		wantEnd := lastInstant(p.Start.Year(), p.Start.Month(), p.Start.Day()+6)
		if !p.End.Equal(wantEnd) {
			t.Errorf("period end = %s, want %s", p.End, wantEnd)
		}
	}
}

func TestCurrentPeriodAt_Weekly_SundayBelongsToPrecedingMonday(t *testing.T) {
	// GIVEN: A Sunday (2024-01-21)
	// WHEN: Resolving the weekly period
	// THEN: The period started six days earlier, on Monday the 15th

	s := engine.DefaultSettings()

	p := engine.CurrentPeriodAt(s, date(2024, time.January, 21))
	if !p.Start.Equal(date(2024, time.January, 15)) {
		t.Errorf("start = %s, want 2024-01-15", p.Start)
	}
	if !p.End.Equal(lastInstant(2024, time.January, 21)) {
		t.Errorf("end = %s, want 2024-01-21T23:59:59.999", p.End)
	}
}

func TestCurrentPeriodAt_NormalizesNowToMidnight(t *testing.T) {
	// A mid-afternoon "now" resolves identically to its midnight.
	s := engine.DefaultSettings()

	afternoon := time.Date(2024, time.January, 17, 15, 42, 7, 12345, time.UTC)
	p1 := engine.CurrentPeriodAt(s, afternoon)
	p2 := engine.CurrentPeriodAt(s, date(2024, time.January, 17))
	if !p1.Start.Equal(p2.Start) || !p1.End.Equal(p2.End) {
		t.Errorf("period differs by time of day: %s vs %s", p1, p2)
	}
}

// =============================================================================
// BIWEEKLY RESOLUTION
// =============================================================================

func TestCurrentPeriodAt_Biweekly_AnchoredToReferenceDate(t *testing.T) {
	// GIVEN: A biweekly cycle anchored at 2024-01-01 (a Monday)
	// WHEN: Resolving for 2024-01-20
	// THEN: One full cycle has elapsed; the current period is
	//       2024-01-15 .. 2024-01-28 (23:59:59.999)

	s := engine.DefaultSettings()
	s.PeriodType = engine.PeriodBiweekly
	s.PeriodCycleRef = "2024-01-01"

	p := engine.CurrentPeriodAt(s, date(2024, time.January, 20))
	if !p.Start.Equal(date(2024, time.January, 15)) {
		t.Errorf("start = %s, want 2024-01-15", p.Start)
	}
	if !p.End.Equal(lastInstant(2024, time.January, 28)) {
		t.Errorf("end = %s, want 2024-01-28T23:59:59.999", p.End)
	}
}

func TestCurrentPeriodAt_Biweekly_CycleBoundaries(t *testing.T) {
	s := engine.DefaultSettings()
	s.PeriodType = engine.PeriodBiweekly
	s.PeriodCycleRef = "2024-01-01"

	cases := []struct {
		now       time.Time
		wantStart time.Time
	}{
		{date(2024, time.January, 1), date(2024, time.January, 1)},   // on the anchor
		{date(2024, time.January, 14), date(2024, time.January, 1)},  // last day of cycle 0
		{date(2024, time.January, 15), date(2024, time.January, 15)}, // first day of cycle 1
		{date(2024, time.February, 12), date(2024, time.February, 12)},
	}

	for _, tc := range cases {
		p := engine.CurrentPeriodAt(s, tc.now)
		if !p.Start.Equal(tc.wantStart) {
			t.Errorf("now=%s: start = %s, want %s", tc.now.Format("2006-01-02"), p.Start, tc.wantStart)
		}
	}
}

func TestCurrentPeriodAt_Biweekly_MissingRefFallsBackToWeekly(t *testing.T) {
	// GIVEN: Biweekly settings without a cycle reference date
	// WHEN: Resolving
	// THEN: The weekly (Monday-anchored) algorithm applies, silently

	s := engine.DefaultSettings()
	s.PeriodType = engine.PeriodBiweekly
	s.PeriodCycleRef = ""

	p := engine.CurrentPeriodAt(s, date(2024, time.January, 20))
	if !p.Start.Equal(date(2024, time.January, 15)) {
		t.Errorf("start = %s, want weekly fallback 2024-01-15", p.Start)
	}
	if !p.End.Equal(lastInstant(2024, time.January, 21)) {
		t.Errorf("end = %s, want weekly fallback 2024-01-21", p.End)
	}
}

// =============================================================================
// PREVIOUS PERIOD
// =============================================================================

func TestPreviousPeriod_Weekly_ContiguousNonOverlapping(t *testing.T) {
	// GIVEN: The current weekly period starting 2024-01-15
	// WHEN: Resolving the previous period
	// THEN: 2024-01-08 .. 2024-01-14, ending one instant before the
	//       current start

	s := engine.DefaultSettings()
	currentStart := date(2024, time.January, 15)

	prev := engine.PreviousPeriod(s, currentStart)
	if !prev.Start.Equal(date(2024, time.January, 8)) {
		t.Errorf("previous start = %s, want 2024-01-08", prev.Start)
	}
	if !prev.End.Equal(lastInstant(2024, time.January, 14)) {
		t.Errorf("previous end = %s, want 2024-01-14T23:59:59.999", prev.End)
	}
	if gap := currentStart.Sub(prev.End); gap != time.Millisecond {
		t.Errorf("gap between previous end and current start = %s, want 1ms", gap)
	}
}

func TestPreviousPeriod_Biweekly(t *testing.T) {
	// GIVEN: The current biweekly period starting 2024-01-15
	// WHEN: Resolving the previous period
	// THEN: 2024-01-01 .. 2024-01-14 (matches the anchored cycle before it)

	s := engine.DefaultSettings()
	s.PeriodType = engine.PeriodBiweekly
	s.PeriodCycleRef = "2024-01-01"

	prev := engine.PreviousPeriod(s, date(2024, time.January, 15))
	if !prev.Start.Equal(date(2024, time.January, 1)) {
		t.Errorf("previous start = %s, want 2024-01-01", prev.Start)
	}
	if !prev.End.Equal(lastInstant(2024, time.January, 14)) {
		t.Errorf("previous end = %s, want 2024-01-14T23:59:59.999", prev.End)
	}
}

func TestPreviousPeriod_PureFunctionOfStart(t *testing.T) {
	// PreviousPeriod depends only on the supplied start, not on how it was
	// derived. An arbitrary Thursday works just as well.
	s := engine.DefaultSettings()

	prev := engine.PreviousPeriod(s, date(2024, time.March, 7))
	if !prev.Start.Equal(date(2024, time.February, 29)) {
		t.Errorf("previous start = %s, want 2024-02-29", prev.Start)
	}
	if !prev.End.Equal(lastInstant(2024, time.March, 6)) {
		t.Errorf("previous end = %s, want 2024-03-06T23:59:59.999", prev.End)
	}
}

// =============================================================================
// PERIOD CONTAINMENT
// =============================================================================

func TestPeriod_Contains(t *testing.T) {
	p := engine.Period{Start: date(2024, time.January, 15), End: lastInstant(2024, time.January, 21)}

	if !p.Contains(date(2024, time.January, 15)) {
		t.Error("start day should be contained")
	}
	if !p.Contains(date(2024, time.January, 21)) {
		t.Error("final day midnight should be contained")
	}
	if p.Contains(date(2024, time.January, 22)) {
		t.Error("day after end should not be contained")
	}
	if p.Contains(date(2024, time.January, 14)) {
		t.Error("day before start should not be contained")
	}
}
