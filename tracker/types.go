/*
Package tracker holds the domain records of the earnings tracker.

PURPOSE:
  Shifts (with their ordered routes and stops), period settlements, and
  the aggregation of shifts into pay-period summaries. The engine package
  knows nothing about these records; this package adapts them into the
  engine's value-typed inputs.

OWNERSHIP:
  A Shift exclusively owns its Routes, which exclusively own their Stops.
  Editing a shift replaces the whole tree in one transaction; deleting a
  shift removes the tree.

DERIVED VALUES:
  A shift's hours and estimated earnings are never persisted. They are
  recomputed from the current settings on every read, so historical
  shifts re-price automatically when rates change.

SEE ALSO:
  - store.go:   Persistence interfaces and sentinel errors
  - summary.go: Pay-period aggregation and settlement reconciliation
*/
package tracker

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/haulhq/driverpay/engine"
)

// =============================================================================
// SHIFT TREE
// =============================================================================

// Stop is one delivery location within a route.
type Stop struct {
	ID             string
	RouteID        string
	StoreNumber    string
	LocationName   string
	CagesDelivered int
	CagesReturned  int
	SequenceOrder  int
}

// Route is one delivery run within a shift, ordered by SequenceOrder.
type Route struct {
	ID            string
	ShiftID       string
	SequenceOrder int
	Stops         []Stop
}

// Shift is one logged work day.
type Shift struct {
	ID     string
	UserID string

	Date      string // YYYY-MM-DD, local wall clock
	StartTime string // HH:MM
	EndTime   string // HH:MM; before StartTime means the shift crosses midnight

	StartKM float64
	EndKM   float64

	TruckReg  string
	TrailerID string
	Refuel    bool // informational only, not consumed by calculations
	Notes     string

	Routes []Route

	CreatedAt time.Time
}

// Span adapts the shift's temporal fields for the engine.
func (s Shift) Span() engine.WorkedSpan {
	return engine.WorkedSpan{Date: s.Date, Start: s.StartTime, End: s.EndTime}
}

// Hours is the shift duration recomputed from its times.
func (s Shift) Hours() decimal.Decimal {
	return s.Span().Hours()
}

// Earnings is the estimated payout under the given settings.
func (s Shift) Earnings(settings engine.Settings) decimal.Decimal {
	return engine.Estimate(s.Span(), settings)
}

// DistanceKM is the odometer delta. The core does not guard against
// readings entered out of order; a negative delta is surfaced as-is.
func (s Shift) DistanceKM() float64 {
	return s.EndKM - s.StartKM
}

// CageCounts totals cages delivered and returned across all stops.
func (s Shift) CageCounts() (delivered, returned int) {
	for _, r := range s.Routes {
		for _, st := range r.Stops {
			delivered += st.CagesDelivered
			returned += st.CagesReturned
		}
	}
	return delivered, returned
}

// Day returns the shift's calendar date as a midnight instant, with ok
// false when the date does not parse.
func (s Shift) Day() (time.Time, bool) {
	d, err := time.ParseInLocation("2006-01-02", s.Date, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// =============================================================================
// SETTLEMENT
// =============================================================================

// Settlement is the user-entered actual payslip figure for one pay
// period, reconciled against the system's estimate. At most one exists
// per (user, start date, end date); saving again overwrites.
type Settlement struct {
	ID           string
	UserID       string
	StartDate    string // YYYY-MM-DD
	EndDate      string // YYYY-MM-DD
	ActualAmount decimal.Decimal
	Note         string
}
