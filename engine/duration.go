/*
duration.go - Shift duration from wall-clock times

PURPOSE:
  Derives elapsed hours for a shift from its date and two clock times.
  A shift whose end time reads earlier than its start time crosses
  midnight: the end is pushed to the following calendar day before
  subtracting.

INPUT FORMAT:
  Date:  "2006-01-02" (calendar date, no time zone, treated as wall clock)
  Times: "15:04" (hour:minute)

FAILURE SEMANTICS:
  Absent or unparseable fields yield zero hours, never an error.

SEE ALSO:
  - earnings.go: Consumes Hours() and DayType()
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var sixty = decimal.NewFromInt(60)

// =============================================================================
// WORKED SPAN
// =============================================================================

// WorkedSpan is the temporal slice of one shift: a calendar date plus
// start and end clock times.
type WorkedSpan struct {
	Date  string // YYYY-MM-DD
	Start string // HH:MM
	End   string // HH:MM
}

// Hours returns the elapsed duration in hours, rounded to two decimal
// places. End times numerically before the start wrap to the next day.
// Malformed input yields zero.
func (w WorkedSpan) Hours() decimal.Decimal {
	start, end, ok := w.bounds()
	if !ok {
		return decimal.Zero
	}
	minutes := decimal.NewFromFloat(end.Sub(start).Minutes())
	return minutes.Div(sixty).Round(2)
}

// DayType classifies the span's date as weekday, Saturday or Sunday.
// An unparseable date classifies as weekday.
func (w WorkedSpan) DayType() DayType {
	day, err := time.ParseInLocation(dateLayout, w.Date, time.UTC)
	if err != nil {
		return DayWeekday
	}
	switch day.Weekday() {
	case time.Saturday:
		return DaySaturday
	case time.Sunday:
		return DaySunday
	default:
		return DayWeekday
	}
}

// bounds resolves the span to concrete start/end instants on the span's
// date, applying the overnight wraparound. ok is false when any field is
// absent or unparseable.
func (w WorkedSpan) bounds() (start, end time.Time, ok bool) {
	day, err := time.ParseInLocation(dateLayout, w.Date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	from, err := time.ParseInLocation(clockLayout, w.Start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to, err := time.ParseInLocation(clockLayout, w.End, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	start = time.Date(day.Year(), day.Month(), day.Day(), from.Hour(), from.Minute(), 0, 0, time.UTC)
	end = time.Date(day.Year(), day.Month(), day.Day(), to.Hour(), to.Minute(), 0, 0, time.UTC)
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, true
}

// =============================================================================
// DAY TYPE
// =============================================================================

// DayType is the three-way day classification the rate matrix branches on.
type DayType string

const (
	DayWeekday  DayType = "weekday"
	DaySaturday DayType = "saturday"
	DaySunday   DayType = "sunday"
)
