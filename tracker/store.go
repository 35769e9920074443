/*
store.go - Persistence interfaces and sentinel errors

PURPOSE:
  The storage contracts the rest of the system depends on. Implemented by
  store/sqlite for real persistence and tracker/store for in-memory tests.

ERROR CONTRACT:
  Not-found conditions are sentinel errors checked with errors.Is. A
  missing settings record is NOT an application error: LoadSettings
  substitutes the documented defaults so a fresh user sees a working
  dashboard immediately.
*/
package tracker

import (
	"context"
	"errors"

	"github.com/haulhq/driverpay/engine"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrSettingsNotFound is returned when a user has no stored settings
	// record. Callers substitute engine.DefaultSettings (see LoadSettings).
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrShiftNotFound is returned when a shift does not exist or belongs
	// to a different user.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrSettlementNotFound is returned when no settlement exists for a
	// period key.
	ErrSettlementNotFound = errors.New("settlement not found")
)

// =============================================================================
// STORE INTERFACES
// =============================================================================

// SettingsStore persists the single settings record each user owns.
type SettingsStore interface {
	// GetSettings returns the user's settings or ErrSettingsNotFound.
	GetSettings(ctx context.Context, userID string) (engine.Settings, error)

	// SaveSettings creates or overwrites the user's settings record.
	SaveSettings(ctx context.Context, userID string, s engine.Settings) error
}

// ShiftStore persists shifts together with their owned routes and stops.
type ShiftStore interface {
	// ListShifts returns all of a user's shifts, newest date first,
	// each with its full route/stop tree.
	ListShifts(ctx context.Context, userID string) ([]Shift, error)

	// GetShift returns one shift with its tree, or ErrShiftNotFound.
	GetShift(ctx context.Context, userID, shiftID string) (*Shift, error)

	// CreateShift inserts a shift and its tree, assigning IDs to any
	// records that lack one. The assigned IDs are written back.
	CreateShift(ctx context.Context, shift *Shift) error

	// ReplaceShift swaps the stored shift and its whole route/stop tree
	// for the supplied one in a single transaction, so a failed edit
	// never leaves a partial tree behind. Returns ErrShiftNotFound when
	// the shift does not exist for the user.
	ReplaceShift(ctx context.Context, shift *Shift) error

	// DeleteShift removes the shift and cascades to its routes and stops.
	DeleteShift(ctx context.Context, userID, shiftID string) error
}

// SettlementStore persists period settlements, at most one per
// (user, start, end) key.
type SettlementStore interface {
	// UpsertSettlement inserts or overwrites the settlement for its
	// period key, writing back the row ID on insert.
	UpsertSettlement(ctx context.Context, st *Settlement) error

	// GetSettlement returns the settlement for an exact period key, or
	// ErrSettlementNotFound.
	GetSettlement(ctx context.Context, userID, startDate, endDate string) (*Settlement, error)

	// ListSettlements returns all of a user's settlements, newest first.
	ListSettlements(ctx context.Context, userID string) ([]Settlement, error)
}

// Store is the full persistence surface the API layer consumes.
type Store interface {
	SettingsStore
	ShiftStore
	SettlementStore
}

// =============================================================================
// SETTINGS LOADING
// =============================================================================

// LoadSettings fetches a user's settings, substituting the documented
// default record when none exists. Storage failures other than
// ErrSettingsNotFound are returned unchanged.
func LoadSettings(ctx context.Context, store SettingsStore, userID string) (engine.Settings, error) {
	s, err := store.GetSettings(ctx, userID)
	if errors.Is(err, ErrSettingsNotFound) {
		return engine.DefaultSettings(), nil
	}
	if err != nil {
		return engine.Settings{}, err
	}
	return s, nil
}
