/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the domain model from the API contract.
  Monetary values are decimal internally; they cross the wire as plain
  numbers plus a preformatted GBP display string so clients never do
  their own currency formatting.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - Save*Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/haulhq/driverpay/engine"
	"github.com/haulhq/driverpay/tracker"
)

const dateLayout = "2006-01-02"

// instantLayout keeps the millisecond period boundaries visible.
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO is the settings record in API form. The same shape is
// accepted on PUT.
type SettingsDTO struct {
	PaymentType            string  `json:"payment_type"`
	HourlyRateWeekday      float64 `json:"hourly_rate_weekday"`
	HourlyRateSaturday     float64 `json:"hourly_rate_saturday"`
	HourlyRateSunday       float64 `json:"hourly_rate_sunday"`
	DailyRateWeekday       float64 `json:"daily_rate_weekday"`
	DailyRateSaturday      float64 `json:"daily_rate_saturday"`
	DailyRateSunday        float64 `json:"daily_rate_sunday"`
	IsGuaranteedDay        bool    `json:"is_guaranteed_day"`
	MinHoursGuaranteed     float64 `json:"min_hours_guaranteed"`
	OvertimeStartHours     float64 `json:"overtime_start_hours"`
	OvertimeRateMultiplier float64 `json:"overtime_rate_multiplier"`
	PeriodType             string  `json:"period_type"`
	PeriodStartDay         int     `json:"period_start_day"`
	PeriodCycleRefDate     string  `json:"period_cycle_ref_date,omitempty"`
}

func toSettingsDTO(s engine.Settings) SettingsDTO {
	return SettingsDTO{
		PaymentType:            string(s.PaymentType),
		HourlyRateWeekday:      f64(s.HourlyRateWeekday),
		HourlyRateSaturday:     f64(s.HourlyRateSaturday),
		HourlyRateSunday:       f64(s.HourlyRateSunday),
		DailyRateWeekday:       f64(s.DailyRateWeekday),
		DailyRateSaturday:      f64(s.DailyRateSaturday),
		DailyRateSunday:        f64(s.DailyRateSunday),
		IsGuaranteedDay:        s.GuaranteedDay,
		MinHoursGuaranteed:     f64(s.MinHoursGuaranteed),
		OvertimeStartHours:     f64(s.OvertimeStartHours),
		OvertimeRateMultiplier: f64(s.OvertimeMultiplier),
		PeriodType:             string(s.PeriodType),
		PeriodStartDay:         s.PeriodStartDay,
		PeriodCycleRefDate:     s.PeriodCycleRef,
	}
}

func fromSettingsDTO(dto SettingsDTO) engine.Settings {
	return engine.Settings{
		PaymentType:        engine.PaymentType(dto.PaymentType),
		HourlyRateWeekday:  decimal.NewFromFloat(dto.HourlyRateWeekday),
		HourlyRateSaturday: decimal.NewFromFloat(dto.HourlyRateSaturday),
		HourlyRateSunday:   decimal.NewFromFloat(dto.HourlyRateSunday),
		DailyRateWeekday:   decimal.NewFromFloat(dto.DailyRateWeekday),
		DailyRateSaturday:  decimal.NewFromFloat(dto.DailyRateSaturday),
		DailyRateSunday:    decimal.NewFromFloat(dto.DailyRateSunday),
		GuaranteedDay:      dto.IsGuaranteedDay,
		MinHoursGuaranteed: decimal.NewFromFloat(dto.MinHoursGuaranteed),
		OvertimeStartHours: decimal.NewFromFloat(dto.OvertimeStartHours),
		OvertimeMultiplier: decimal.NewFromFloat(dto.OvertimeRateMultiplier),
		PeriodType:         engine.PeriodType(dto.PeriodType),
		PeriodStartDay:     dto.PeriodStartDay,
		PeriodCycleRef:     dto.PeriodCycleRefDate,
	}
}

// =============================================================================
// SHIFTS
// =============================================================================

// StopDTO is one delivery location within a route.
type StopDTO struct {
	ID             string `json:"id,omitempty"`
	StoreNumber    string `json:"store_number"`
	LocationName   string `json:"location_name"`
	CagesDelivered int    `json:"cages_delivered"`
	CagesReturned  int    `json:"cages_returned"`
	SequenceOrder  int    `json:"sequence_order"`
}

// RouteDTO is one delivery run within a shift.
type RouteDTO struct {
	ID            string    `json:"id,omitempty"`
	SequenceOrder int       `json:"sequence_order"`
	Stops         []StopDTO `json:"stops"`
}

// ShiftDTO is a shift with its derived values attached. total_hours and
// estimated_earnings are recomputed from current settings on every read.
type ShiftDTO struct {
	ID        string     `json:"id"`
	Date      string     `json:"date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	StartKM   float64    `json:"start_km"`
	EndKM     float64    `json:"end_km"`
	TruckReg  string     `json:"truck_reg"`
	TrailerID string     `json:"trailer_id"`
	Refuel    bool       `json:"refuel"`
	Notes     string     `json:"notes"`
	Routes    []RouteDTO `json:"routes"`

	TotalHours        float64 `json:"total_hours"`
	EstimatedEarnings float64 `json:"estimated_earnings"`
	EarningsDisplay   string  `json:"earnings_display"`

	CreatedAt string `json:"created_at,omitempty"`
}

// SaveShiftRequest is the body for creating or fully replacing a shift.
// Edits resubmit the whole shift plus routes and stops.
type SaveShiftRequest struct {
	Date      string     `json:"date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	StartKM   float64    `json:"start_km"`
	EndKM     float64    `json:"end_km"`
	TruckReg  string     `json:"truck_reg"`
	TrailerID string     `json:"trailer_id"`
	Refuel    bool       `json:"refuel"`
	Notes     string     `json:"notes"`
	Routes    []RouteDTO `json:"routes"`
}

func toShiftDTO(sh tracker.Shift, settings engine.Settings) ShiftDTO {
	earnings := sh.Earnings(settings)

	routes := make([]RouteDTO, len(sh.Routes))
	for i, r := range sh.Routes {
		stops := make([]StopDTO, len(r.Stops))
		for j, st := range r.Stops {
			stops[j] = StopDTO{
				ID:             st.ID,
				StoreNumber:    st.StoreNumber,
				LocationName:   st.LocationName,
				CagesDelivered: st.CagesDelivered,
				CagesReturned:  st.CagesReturned,
				SequenceOrder:  st.SequenceOrder,
			}
		}
		routes[i] = RouteDTO{ID: r.ID, SequenceOrder: r.SequenceOrder, Stops: stops}
	}

	dto := ShiftDTO{
		ID:                sh.ID,
		Date:              sh.Date,
		StartTime:         sh.StartTime,
		EndTime:           sh.EndTime,
		StartKM:           sh.StartKM,
		EndKM:             sh.EndKM,
		TruckReg:          sh.TruckReg,
		TrailerID:         sh.TrailerID,
		Refuel:            sh.Refuel,
		Notes:             sh.Notes,
		Routes:            routes,
		TotalHours:        f64(sh.Hours()),
		EstimatedEarnings: f64(earnings),
		EarningsDisplay:   engine.FormatGBP(earnings),
	}
	if !sh.CreatedAt.IsZero() {
		dto.CreatedAt = sh.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func fromSaveShiftRequest(req SaveShiftRequest, userID string) tracker.Shift {
	routes := make([]tracker.Route, len(req.Routes))
	for i, r := range req.Routes {
		stops := make([]tracker.Stop, len(r.Stops))
		for j, st := range r.Stops {
			stops[j] = tracker.Stop{
				StoreNumber:    st.StoreNumber,
				LocationName:   st.LocationName,
				CagesDelivered: st.CagesDelivered,
				CagesReturned:  st.CagesReturned,
				SequenceOrder:  st.SequenceOrder,
			}
		}
		routes[i] = tracker.Route{SequenceOrder: r.SequenceOrder, Stops: stops}
	}

	return tracker.Shift{
		UserID:    userID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		StartKM:   req.StartKM,
		EndKM:     req.EndKM,
		TruckReg:  req.TruckReg,
		TrailerID: req.TrailerID,
		Refuel:    req.Refuel,
		Notes:     req.Notes,
		Routes:    routes,
	}
}

// =============================================================================
// SETTLEMENTS AND SUMMARIES
// =============================================================================

// SettlementDTO is a recorded payslip amount for one period.
type SettlementDTO struct {
	ID           string  `json:"id,omitempty"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	ActualAmount float64 `json:"actual_amount"`
	Note         string  `json:"note"`
}

// SaveSettlementRequest upserts the settlement for a period key.
type SaveSettlementRequest struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	ActualAmount float64 `json:"actual_amount"`
	Note         string  `json:"note"`
}

func toSettlementDTO(st tracker.Settlement) SettlementDTO {
	return SettlementDTO{
		ID:           st.ID,
		StartDate:    st.StartDate,
		EndDate:      st.EndDate,
		ActualAmount: f64(st.ActualAmount),
		Note:         st.Note,
	}
}

// PeriodSummaryDTO is the aggregate dashboard view of one pay period.
type PeriodSummaryDTO struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	ShiftCount      int     `json:"shift_count"`
	TotalHours      float64 `json:"total_hours"`
	TotalEarnings   float64 `json:"total_earnings"`
	EarningsDisplay string  `json:"earnings_display"`
	TotalKM         float64 `json:"total_km"`
	CagesDelivered  int     `json:"cages_delivered"`
	CagesReturned   int     `json:"cages_returned"`

	Settlement *SettlementDTO `json:"settlement,omitempty"`
	Variance   *float64       `json:"variance,omitempty"`

	Shifts []ShiftDTO `json:"shifts"`
}

func toPeriodSummaryDTO(sum tracker.PeriodSummary, shifts []ShiftDTO) PeriodSummaryDTO {
	dto := PeriodSummaryDTO{
		Start:           sum.Period.Start.Format(instantLayout),
		End:             sum.Period.End.Format(instantLayout),
		StartDate:       sum.Period.Start.Format(dateLayout),
		EndDate:         sum.Period.End.Format(dateLayout),
		ShiftCount:      sum.ShiftCount,
		TotalHours:      f64(sum.TotalHours),
		TotalEarnings:   f64(sum.TotalEarnings),
		EarningsDisplay: engine.FormatGBP(sum.TotalEarnings),
		TotalKM:         sum.TotalKM,
		CagesDelivered:  sum.CagesDelivered,
		CagesReturned:   sum.CagesReturned,
		Shifts:          shifts,
	}
	if sum.Settlement != nil {
		st := toSettlementDTO(*sum.Settlement)
		dto.Settlement = &st
	}
	if sum.Variance != nil {
		v := f64(*sum.Variance)
		dto.Variance = &v
	}
	return dto
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func f64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
