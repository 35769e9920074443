package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/haulhq/driverpay/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func span(date, start, end string) engine.WorkedSpan {
	return engine.WorkedSpan{Date: date, Start: start, End: end}
}

// =============================================================================
// DURATION TESTS
// =============================================================================

func TestHours_SameDay(t *testing.T) {
	// GIVEN: A shift that starts and ends on the same calendar day
	// WHEN: Computing the duration
	// THEN: Hours equal end − start, rounded to 2dp

	cases := []struct {
		name  string
		span  engine.WorkedSpan
		hours string
	}{
		{"standard day", span("2024-01-03", "06:00", "14:00"), "8"},
		{"long day", span("2024-01-03", "04:00", "15:00"), "11"},
		{"partial hour", span("2024-01-03", "09:00", "09:45"), "0.75"},
		{"fractional result", span("2024-01-03", "08:10", "16:30"), "8.33"},
		{"zero duration", span("2024-01-03", "08:00", "08:00"), "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.span.Hours()
			if !got.Equal(dec(tc.hours)) {
				t.Errorf("Hours() = %s, want %s", got, tc.hours)
			}
		})
	}
}

func TestHours_OvernightWraparound(t *testing.T) {
	// GIVEN: A shift whose end time reads earlier than its start time
	// WHEN: Computing the duration
	// THEN: The end is pushed to the next day before subtracting

	got := span("2024-01-03", "22:00", "02:00").Hours()
	if !got.Equal(dec("4")) {
		t.Errorf("overnight Hours() = %s, want 4", got)
	}

	got = span("2024-01-03", "18:30", "05:15").Hours()
	if !got.Equal(dec("10.75")) {
		t.Errorf("overnight Hours() = %s, want 10.75", got)
	}
}

func TestHours_MalformedInputYieldsZero(t *testing.T) {
	// GIVEN: Missing or unparseable temporal fields
	// WHEN: Computing the duration
	// THEN: Zero, never an error

	cases := []struct {
		name string
		span engine.WorkedSpan
	}{
		{"missing date", span("", "06:00", "14:00")},
		{"missing start", span("2024-01-03", "", "14:00")},
		{"missing end", span("2024-01-03", "06:00", "")},
		{"garbage date", span("not-a-date", "06:00", "14:00")},
		{"garbage time", span("2024-01-03", "6am", "14:00")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.span.Hours(); !got.IsZero() {
				t.Errorf("Hours() = %s, want 0", got)
			}
		})
	}
}

func TestDayType_Classification(t *testing.T) {
	// 2024-01-01 is a Monday.
	cases := []struct {
		date string
		want engine.DayType
	}{
		{"2024-01-01", engine.DayWeekday},
		{"2024-01-03", engine.DayWeekday},
		{"2024-01-05", engine.DayWeekday},
		{"2024-01-06", engine.DaySaturday},
		{"2024-01-07", engine.DaySunday},
	}

	for _, tc := range cases {
		got := span(tc.date, "06:00", "14:00").DayType()
		if got != tc.want {
			t.Errorf("DayType(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}
