/*
handlers.go - HTTP handlers for the earnings tracker API

PURPOSE:
  Exposes settings, shifts, pay-period summaries and settlements over
  REST. Handlers parse and validate input, delegate to the engine and
  tracker packages, and serialize responses. All routes are scoped to the
  authenticated user.

ENDPOINTS:
  Settings:
    GET    /api/settings            Current settings (defaults if unset)
    PUT    /api/settings            Save settings

  Shifts:
    GET    /api/shifts              List shifts with derived values
    POST   /api/shifts              Log a shift
    GET    /api/shifts/{id}         One shift
    PUT    /api/shifts/{id}         Full replace (shift + routes + stops)
    DELETE /api/shifts/{id}         Delete (cascades to routes/stops)

  Periods:
    GET    /api/periods/current     Current period summary (?now=YYYY-MM-DD)
    GET    /api/periods/previous    Previous period summary

  Settlements:
    GET    /api/settlements         All recorded settlements
    PUT    /api/settlements         Upsert by (start_date, end_date)

ERROR HANDLING:
  400 invalid input, 401 missing identity, 404 not found, 500 storage.
  The calculation core itself never errors; a shift with unusable times
  simply reports zero hours and earnings.

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/haulhq/driverpay/engine"
	"github.com/haulhq/driverpay/tracker"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Store tracker.Store
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store tracker.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the user's settings, or the documented defaults
// when no record exists yet.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := tracker.LoadSettings(r.Context(), h.Store, userFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// UpdateSettings validates and saves the user's settings record.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	settings := fromSettingsDTO(dto)
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid settings", err)
		return
	}

	if err := h.Store.SaveSettings(r.Context(), userFrom(r.Context()), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns all shifts, newest first, with hours and earnings
// recomputed under the current settings.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())

	settings, err := tracker.LoadSettings(r.Context(), h.Store, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	shifts, err := h.Store.ListShifts(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, sh := range shifts {
		dtos[i] = toShiftDTO(sh, settings)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetShift returns one shift with its route/stop tree.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())

	sh, err := h.Store.GetShift(r.Context(), userID, chi.URLParam(r, "id"))
	if errors.Is(err, tracker.ErrShiftNotFound) {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get shift", err)
		return
	}

	settings, err := tracker.LoadSettings(r.Context(), h.Store, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(*sh, settings))
}

// CreateShift logs a new shift with its routes and stops.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())

	var req SaveShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateShiftRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	shift := fromSaveShiftRequest(req, userID)
	if err := h.Store.CreateShift(r.Context(), &shift); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create shift", err)
		return
	}

	settings, err := tracker.LoadSettings(r.Context(), h.Store, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(shift, settings))
}

// UpdateShift fully replaces a shift and its route/stop tree.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())

	var req SaveShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateShiftRequest(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}

	shift := fromSaveShiftRequest(req, userID)
	shift.ID = chi.URLParam(r, "id")

	err := h.Store.ReplaceShift(r.Context(), &shift)
	if errors.Is(err, tracker.ErrShiftNotFound) {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update shift", err)
		return
	}

	settings, err := tracker.LoadSettings(r.Context(), h.Store, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(shift, settings))
}

// DeleteShift removes a shift; routes and stops go with it.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	err := h.Store.DeleteShift(r.Context(), userFrom(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, tracker.ErrShiftNotFound) {
		writeError(w, http.StatusNotFound, "Shift not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateShiftRequest rejects shifts the storage layer would accept but
// no screen could ever render sensibly. The calculation core tolerates
// missing times (they estimate to zero); a missing date is the one field
// nothing downstream can work without.
func validateShiftRequest(req SaveShiftRequest) error {
	if req.Date == "" {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// CurrentPeriod returns the summary for the pay period containing "now".
func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	h.periodSummary(w, r, false)
}

// PreviousPeriod returns the summary for the period immediately before
// the current one.
func (h *Handler) PreviousPeriod(w http.ResponseWriter, r *http.Request) {
	h.periodSummary(w, r, true)
}

func (h *Handler) periodSummary(w http.ResponseWriter, r *http.Request, previous bool) {
	userID := userFrom(r.Context())

	settings, err := tracker.LoadSettings(r.Context(), h.Store, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	now := time.Now().UTC()
	if raw := r.URL.Query().Get("now"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid now parameter (use YYYY-MM-DD)", err)
			return
		}
		now = parsed
	}

	period := engine.CurrentPeriodAt(settings, now)
	if previous {
		period = engine.PreviousPeriod(settings, period.Start)
	}

	shifts, err := h.Store.ListShifts(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	sum := tracker.Summarize(shifts, settings, period)

	settlement, err := h.Store.GetSettlement(r.Context(), userID,
		period.Start.Format(dateLayout), period.End.Format(dateLayout))
	if err != nil && !errors.Is(err, tracker.ErrSettlementNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to load settlement", err)
		return
	}
	sum = sum.WithSettlement(settlement)

	var inPeriod []ShiftDTO
	for _, sh := range shifts {
		if day, ok := sh.Day(); ok && period.Contains(day) {
			inPeriod = append(inPeriod, toShiftDTO(sh, settings))
		}
	}

	writeJSON(w, http.StatusOK, toPeriodSummaryDTO(sum, inPeriod))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// ListSettlements returns all recorded settlements, newest first.
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	settlements, err := h.Store.ListSettlements(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settlements", err)
		return
	}

	dtos := make([]SettlementDTO, len(settlements))
	for i, st := range settlements {
		dtos[i] = toSettlementDTO(st)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertSettlement records the actual payslip amount for a period,
// overwriting any earlier record for the same period key.
func (h *Handler) UpsertSettlement(w http.ResponseWriter, r *http.Request) {
	var req SaveSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date (use YYYY-MM-DD)", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date", nil)
		return
	}

	st := tracker.Settlement{
		UserID:       userFrom(r.Context()),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ActualAmount: decimal.NewFromFloat(req.ActualAmount),
		Note:         req.Note,
	}
	if err := h.Store.UpsertSettlement(r.Context(), &st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settlement", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementDTO(st))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
