// Package store provides an in-memory tracker.Store for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/haulhq/driverpay/engine"
	"github.com/haulhq/driverpay/tracker"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	settings    map[string]engine.Settings
	shifts      map[string]tracker.Shift // keyed by shift ID
	settlements map[settlementKey]tracker.Settlement
}

type settlementKey struct {
	UserID    string
	StartDate string
	EndDate   string
}

func NewMemory() *Memory {
	return &Memory{
		settings:    make(map[string]engine.Settings),
		shifts:      make(map[string]tracker.Shift),
		settlements: make(map[settlementKey]tracker.Settlement),
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetSettings(_ context.Context, userID string) (engine.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[userID]
	if !ok {
		return engine.Settings{}, tracker.ErrSettingsNotFound
	}
	return s, nil
}

func (m *Memory) SaveSettings(_ context.Context, userID string, s engine.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[userID] = s
	return nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) ListShifts(_ context.Context, userID string) ([]tracker.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []tracker.Shift
	for _, sh := range m.shifts {
		if sh.UserID == userID {
			result = append(result, copyShift(sh))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) GetShift(_ context.Context, userID, shiftID string) (*tracker.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sh, ok := m.shifts[shiftID]
	if !ok || sh.UserID != userID {
		return nil, tracker.ErrShiftNotFound
	}
	out := copyShift(sh)
	return &out, nil
}

func (m *Memory) CreateShift(_ context.Context, shift *tracker.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	assignShiftIDs(shift)
	m.shifts[shift.ID] = copyShift(*shift)
	return nil
}

func (m *Memory) ReplaceShift(_ context.Context, shift *tracker.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.shifts[shift.ID]
	if !ok || existing.UserID != shift.UserID {
		return tracker.ErrShiftNotFound
	}

	shift.CreatedAt = existing.CreatedAt
	assignShiftIDs(shift)
	m.shifts[shift.ID] = copyShift(*shift)
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, userID, shiftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sh, ok := m.shifts[shiftID]
	if !ok || sh.UserID != userID {
		return tracker.ErrShiftNotFound
	}
	delete(m.shifts, shiftID)
	return nil
}

// =============================================================================
// SETTLEMENTS
// =============================================================================

func (m *Memory) UpsertSettlement(_ context.Context, st *tracker.Settlement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := settlementKey{UserID: st.UserID, StartDate: st.StartDate, EndDate: st.EndDate}
	if existing, ok := m.settlements[key]; ok {
		st.ID = existing.ID
	} else if st.ID == "" {
		st.ID = uuid.NewString()
	}
	m.settlements[key] = *st
	return nil
}

func (m *Memory) GetSettlement(_ context.Context, userID, startDate, endDate string) (*tracker.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.settlements[settlementKey{UserID: userID, StartDate: startDate, EndDate: endDate}]
	if !ok {
		return nil, tracker.ErrSettlementNotFound
	}
	out := st
	return &out, nil
}

func (m *Memory) ListSettlements(_ context.Context, userID string) ([]tracker.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []tracker.Settlement
	for _, st := range m.settlements {
		if st.UserID == userID {
			result = append(result, st)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate > result[j].StartDate
	})
	return result, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// assignShiftIDs fills in missing IDs and parent links across the tree.
func assignShiftIDs(shift *tracker.Shift) {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	for i := range shift.Routes {
		r := &shift.Routes[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		r.ShiftID = shift.ID
		for j := range r.Stops {
			if r.Stops[j].ID == "" {
				r.Stops[j].ID = uuid.NewString()
			}
			r.Stops[j].RouteID = r.ID
		}
	}
}

// copyShift deep-copies the route/stop tree so callers cannot mutate
// stored state through a returned slice.
func copyShift(sh tracker.Shift) tracker.Shift {
	routes := make([]tracker.Route, len(sh.Routes))
	for i, r := range sh.Routes {
		stops := make([]tracker.Stop, len(r.Stops))
		copy(stops, r.Stops)
		r.Stops = stops
		routes[i] = r
	}
	sh.Routes = routes
	return sh
}
