package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulhq/driverpay/engine"
	"github.com/haulhq/driverpay/tracker"
	"github.com/haulhq/driverpay/tracker/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func weekOf(y int, m time.Month, d int) engine.Period {
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)
	return engine.Period{
		Start: start,
		End:   time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}
}

func testShift(userID, date, start, end string) tracker.Shift {
	return tracker.Shift{
		UserID:    userID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		StartKM:   100,
		EndKM:     350,
		TruckReg:  "BX71 KYC",
		Routes: []tracker.Route{{
			SequenceOrder: 1,
			Stops: []tracker.Stop{
				{StoreNumber: "4411", LocationName: "Dartford", CagesDelivered: 18, CagesReturned: 12, SequenceOrder: 1},
				{StoreNumber: "4590", LocationName: "Maidstone", CagesDelivered: 22, CagesReturned: 20, SequenceOrder: 2},
			},
		}},
	}
}

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestSummarize_InPeriodOnly(t *testing.T) {
	// GIVEN: Three shifts, two inside the week of 2024-01-15
	// WHEN: Summarizing that week
	// THEN: Only the in-period shifts contribute

	settings := engine.DefaultSettings()
	settings.GuaranteedDay = false
	shifts := []tracker.Shift{
		testShift("drv-1", "2024-01-15", "06:00", "14:00"), // Monday, 8h
		testShift("drv-1", "2024-01-20", "06:00", "14:00"), // Saturday, 8h
		testShift("drv-1", "2024-01-08", "06:00", "14:00"), // previous week
	}

	sum := tracker.Summarize(shifts, settings, weekOf(2024, time.January, 15))

	assert.Equal(t, 2, sum.ShiftCount)
	assert.True(t, sum.TotalHours.Equal(dec("16")), "hours = %s", sum.TotalHours)
	// Monday 8 × 18.50 + Saturday 8 × 22.00 = 148.00 + 176.00
	assert.True(t, sum.TotalEarnings.Equal(dec("324")), "earnings = %s", sum.TotalEarnings)
	assert.InDelta(t, 500.0, sum.TotalKM, 0.001)
	assert.Equal(t, 80, sum.CagesDelivered)
	assert.Equal(t, 64, sum.CagesReturned)
}

func TestSummarize_SkipsUnparseableDates(t *testing.T) {
	settings := engine.DefaultSettings()
	shifts := []tracker.Shift{
		testShift("drv-1", "2024-01-15", "06:00", "14:00"),
		testShift("drv-1", "15/01/2024", "06:00", "14:00"), // wrong format
	}

	sum := tracker.Summarize(shifts, settings, weekOf(2024, time.January, 15))
	assert.Equal(t, 1, sum.ShiftCount)
}

func TestSummarize_EmptyPeriod(t *testing.T) {
	sum := tracker.Summarize(nil, engine.DefaultSettings(), weekOf(2024, time.January, 15))

	assert.Equal(t, 0, sum.ShiftCount)
	assert.True(t, sum.TotalHours.IsZero())
	assert.True(t, sum.TotalEarnings.IsZero())
	assert.Nil(t, sum.Settlement)
	assert.Nil(t, sum.Variance)
}

func TestSummarize_RepricesUnderCurrentSettings(t *testing.T) {
	// GIVEN: The same shift summarized under two different rates
	// WHEN: The weekday rate changes
	// THEN: The estimate follows the current settings; nothing is cached

	shifts := []tracker.Shift{testShift("drv-1", "2024-01-15", "06:00", "14:00")}
	period := weekOf(2024, time.January, 15)

	before := engine.DefaultSettings()
	before.GuaranteedDay = false
	after := before
	after.HourlyRateWeekday = dec("20.00")

	assert.True(t, tracker.Summarize(shifts, before, period).TotalEarnings.Equal(dec("148")))
	assert.True(t, tracker.Summarize(shifts, after, period).TotalEarnings.Equal(dec("160")))
}

func TestWithSettlement_Variance(t *testing.T) {
	// GIVEN: A summary estimating 324.00 and a payslip of 330.50
	// WHEN: Attaching the settlement
	// THEN: Variance = actual − estimate = 6.50

	settings := engine.DefaultSettings()
	settings.GuaranteedDay = false
	shifts := []tracker.Shift{
		testShift("drv-1", "2024-01-15", "06:00", "14:00"),
		testShift("drv-1", "2024-01-20", "06:00", "14:00"),
	}
	sum := tracker.Summarize(shifts, settings, weekOf(2024, time.January, 15))

	st := &tracker.Settlement{
		UserID:       "drv-1",
		StartDate:    "2024-01-15",
		EndDate:      "2024-01-21",
		ActualAmount: dec("330.50"),
		Note:         "includes night-out allowance",
	}
	sum = sum.WithSettlement(st)

	require.NotNil(t, sum.Variance)
	assert.True(t, sum.Variance.Equal(dec("6.50")), "variance = %s", sum.Variance)
	assert.Equal(t, st, sum.Settlement)
}

func TestWithSettlement_NilLeavesSummaryUntouched(t *testing.T) {
	sum := tracker.Summarize(nil, engine.DefaultSettings(), weekOf(2024, time.January, 15))
	sum = sum.WithSettlement(nil)

	assert.Nil(t, sum.Settlement)
	assert.Nil(t, sum.Variance)
}

// =============================================================================
// SETTINGS LOADING
// =============================================================================

func TestLoadSettings_SubstitutesDefaults(t *testing.T) {
	// GIVEN: A user with no stored settings
	// WHEN: Loading
	// THEN: The documented default record, not an error

	ctx := context.Background()
	mem := store.NewMemory()

	s, err := tracker.LoadSettings(ctx, mem, "drv-new")
	require.NoError(t, err)
	assert.Equal(t, engine.PayHourly, s.PaymentType)
	assert.True(t, s.HourlyRateWeekday.Equal(dec("18.50")))
	assert.True(t, s.GuaranteedDay)
}

func TestLoadSettings_ReturnsStoredRecord(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	custom := engine.DefaultSettings()
	custom.PaymentType = engine.PayDaily
	custom.DailyRateWeekday = dec("155")
	require.NoError(t, mem.SaveSettings(ctx, "drv-1", custom))

	s, err := tracker.LoadSettings(ctx, mem, "drv-1")
	require.NoError(t, err)
	assert.Equal(t, engine.PayDaily, s.PaymentType)
	assert.True(t, s.DailyRateWeekday.Equal(dec("155")))
}
