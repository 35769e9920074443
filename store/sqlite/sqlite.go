/*
Package sqlite provides the SQLite-backed implementation of tracker.Store.

PURPOSE:
  Persists user settings, shifts with their owned route/stop trees, and
  period settlements. The same patterns apply to PostgreSQL in production;
  only minor SQL dialect differences.

KEY TABLES:
  user_settings:      One row per user; rates stored as decimal strings
  shifts:             One row per logged work day
  routes, stops:      The ownership tree under a shift, ordered by
                      sequence_order, removed by cascading foreign keys
  period_settlements: One row per (user, start, end); upsert-by-key

REPLACE-SET EDITS:
  ReplaceShift swaps the shift row and its entire route/stop tree inside
  one SQL transaction. The route delete cascades to stops, the new tree is
  reinserted, and the whole edit commits or rolls back together, so a
  failed edit never leaves a partial tree.

MONEY COLUMNS:
  Rates and amounts are TEXT holding decimal strings, round-tripped
  through shopspring/decimal. REAL would reintroduce the float drift the
  engine exists to avoid.

WAL MODE:
  SQLite is opened with WAL and foreign keys on. A sync.RWMutex serializes
  writers; with PostgreSQL the database handles this instead.

USAGE:
  store, err := sqlite.New("./data/driverpay.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - tracker/store.go: Interface definitions and sentinel errors
  - tracker/store/memory.go: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/haulhq/driverpay/engine"
	"github.com/haulhq/driverpay/tracker"
)

// Store implements tracker.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_settings (
		user_id TEXT PRIMARY KEY,
		payment_type TEXT NOT NULL,
		hourly_rate_weekday TEXT NOT NULL,
		hourly_rate_saturday TEXT NOT NULL,
		hourly_rate_sunday TEXT NOT NULL,
		daily_rate_weekday TEXT NOT NULL,
		daily_rate_saturday TEXT NOT NULL,
		daily_rate_sunday TEXT NOT NULL,
		is_guaranteed_day BOOLEAN NOT NULL,
		min_hours_guaranteed TEXT NOT NULL,
		overtime_start_hours TEXT NOT NULL,
		overtime_rate_multiplier TEXT NOT NULL,
		period_type TEXT NOT NULL,
		period_start_day INTEGER NOT NULL DEFAULT 1,
		period_cycle_ref_date TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		start_km REAL NOT NULL DEFAULT 0,
		end_km REAL NOT NULL DEFAULT 0,
		truck_reg TEXT NOT NULL DEFAULT '',
		trailer_id TEXT NOT NULL DEFAULT '',
		refuel BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Hot path: listing a user's shifts and filtering by period
	CREATE INDEX IF NOT EXISTS idx_shifts_user_date
		ON shifts(user_id, date DESC);

	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(id) ON DELETE CASCADE,
		sequence_order INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_routes_shift
		ON routes(shift_id, sequence_order);

	CREATE TABLE IF NOT EXISTS stops (
		id TEXT PRIMARY KEY,
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		store_number TEXT NOT NULL DEFAULT '',
		location_name TEXT NOT NULL DEFAULT '',
		cages_delivered INTEGER NOT NULL DEFAULT 0,
		cages_returned INTEGER NOT NULL DEFAULT 0,
		sequence_order INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_stops_route
		ON stops(route_id, sequence_order);

	CREATE TABLE IF NOT EXISTS period_settlements (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		actual_amount TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, start_date, end_date)
	);

	CREATE INDEX IF NOT EXISTS idx_settlements_user
		ON period_settlements(user_id, start_date DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SETTINGS (tracker.SettingsStore)
// =============================================================================

func (s *Store) GetSettings(ctx context.Context, userID string) (engine.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT payment_type,
		       hourly_rate_weekday, hourly_rate_saturday, hourly_rate_sunday,
		       daily_rate_weekday, daily_rate_saturday, daily_rate_sunday,
		       is_guaranteed_day, min_hours_guaranteed,
		       overtime_start_hours, overtime_rate_multiplier,
		       period_type, period_start_day, period_cycle_ref_date
		FROM user_settings WHERE user_id = ?`, userID)

	var (
		settings                               engine.Settings
		paymentType, periodType                string
		hrWk, hrSat, hrSun, drWk, drSat, drSun string
		minHours, otStart, otMult              string
		cycleRef                               sql.NullString
	)
	err := row.Scan(&paymentType,
		&hrWk, &hrSat, &hrSun,
		&drWk, &drSat, &drSun,
		&settings.GuaranteedDay, &minHours,
		&otStart, &otMult,
		&periodType, &settings.PeriodStartDay, &cycleRef)
	if err == sql.ErrNoRows {
		return engine.Settings{}, tracker.ErrSettingsNotFound
	}
	if err != nil {
		return engine.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings.PaymentType = engine.PaymentType(paymentType)
	settings.PeriodType = engine.PeriodType(periodType)
	settings.PeriodCycleRef = cycleRef.String

	fields := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&settings.HourlyRateWeekday, hrWk},
		{&settings.HourlyRateSaturday, hrSat},
		{&settings.HourlyRateSunday, hrSun},
		{&settings.DailyRateWeekday, drWk},
		{&settings.DailyRateSaturday, drSat},
		{&settings.DailyRateSunday, drSun},
		{&settings.MinHoursGuaranteed, minHours},
		{&settings.OvertimeStartHours, otStart},
		{&settings.OvertimeMultiplier, otMult},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.src)
		if err != nil {
			return engine.Settings{}, fmt.Errorf("corrupt decimal column %q: %w", f.src, err)
		}
		*f.dst = d
	}

	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, userID string, settings engine.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings
		(user_id, payment_type,
		 hourly_rate_weekday, hourly_rate_saturday, hourly_rate_sunday,
		 daily_rate_weekday, daily_rate_saturday, daily_rate_sunday,
		 is_guaranteed_day, min_hours_guaranteed,
		 overtime_start_hours, overtime_rate_multiplier,
		 period_type, period_start_day, period_cycle_ref_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			payment_type = excluded.payment_type,
			hourly_rate_weekday = excluded.hourly_rate_weekday,
			hourly_rate_saturday = excluded.hourly_rate_saturday,
			hourly_rate_sunday = excluded.hourly_rate_sunday,
			daily_rate_weekday = excluded.daily_rate_weekday,
			daily_rate_saturday = excluded.daily_rate_saturday,
			daily_rate_sunday = excluded.daily_rate_sunday,
			is_guaranteed_day = excluded.is_guaranteed_day,
			min_hours_guaranteed = excluded.min_hours_guaranteed,
			overtime_start_hours = excluded.overtime_start_hours,
			overtime_rate_multiplier = excluded.overtime_rate_multiplier,
			period_type = excluded.period_type,
			period_start_day = excluded.period_start_day,
			period_cycle_ref_date = excluded.period_cycle_ref_date,
			updated_at = excluded.updated_at`,
		userID, string(settings.PaymentType),
		settings.HourlyRateWeekday.String(), settings.HourlyRateSaturday.String(), settings.HourlyRateSunday.String(),
		settings.DailyRateWeekday.String(), settings.DailyRateSaturday.String(), settings.DailyRateSunday.String(),
		settings.GuaranteedDay, settings.MinHoursGuaranteed.String(),
		settings.OvertimeStartHours.String(), settings.OvertimeMultiplier.String(),
		string(settings.PeriodType), settings.PeriodStartDay, nullString(settings.PeriodCycleRef),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// SHIFTS (tracker.ShiftStore)
// =============================================================================

const shiftColumns = `id, user_id, date, start_time, end_time, start_km, end_km,
	truck_reg, trailer_id, refuel, notes, created_at`

func (s *Store) ListShifts(ctx context.Context, userID string) ([]tracker.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []tracker.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}

	for i := range shifts {
		routes, err := s.loadRoutes(ctx, shifts[i].ID)
		if err != nil {
			return nil, err
		}
		shifts[i].Routes = routes
	}
	return shifts, nil
}

func (s *Store) GetShift(ctx context.Context, userID, shiftID string) (*tracker.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts WHERE id = ? AND user_id = ?`, shiftID, userID)

	sh, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, tracker.ErrShiftNotFound
	}
	if err != nil {
		return nil, err
	}

	routes, err := s.loadRoutes(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	sh.Routes = routes
	return &sh, nil
}

func (s *Store) CreateShift(ctx context.Context, shift *tracker.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignIDs(shift)
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shifts (`+shiftColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shift.ID, shift.UserID, shift.Date, shift.StartTime, shift.EndTime,
		shift.StartKM, shift.EndKM, shift.TruckReg, shift.TrailerID,
		shift.Refuel, shift.Notes, shift.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}

	if err := insertRoutes(ctx, tx, shift.Routes); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ReplaceShift(ctx context.Context, shift *tracker.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	assignIDs(shift)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE shifts
		SET date = ?, start_time = ?, end_time = ?, start_km = ?, end_km = ?,
		    truck_reg = ?, trailer_id = ?, refuel = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		shift.Date, shift.StartTime, shift.EndTime, shift.StartKM, shift.EndKM,
		shift.TruckReg, shift.TrailerID, shift.Refuel, shift.Notes,
		shift.ID, shift.UserID)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tracker.ErrShiftNotFound
	}

	// Replace-set: drop the old tree (stops cascade) and reinsert, all
	// inside this transaction.
	if _, err := tx.ExecContext(ctx, `DELETE FROM routes WHERE shift_id = ?`, shift.ID); err != nil {
		return fmt.Errorf("failed to clear routes: %w", err)
	}
	if err := insertRoutes(ctx, tx, shift.Routes); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteShift(ctx context.Context, userID, shiftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM shifts WHERE id = ? AND user_id = ?`, shiftID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tracker.ErrShiftNotFound
	}
	return nil
}

func (s *Store) loadRoutes(ctx context.Context, shiftID string) ([]tracker.Route, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shift_id, sequence_order
		FROM routes WHERE shift_id = ?
		ORDER BY sequence_order ASC`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []tracker.Route
	for rows.Next() {
		var r tracker.Route
		if err := rows.Scan(&r.ID, &r.ShiftID, &r.SequenceOrder); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate routes: %w", err)
	}

	for i := range routes {
		stops, err := s.loadStops(ctx, routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Stops = stops
	}
	return routes, nil
}

func (s *Store) loadStops(ctx context.Context, routeID string) ([]tracker.Stop, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, route_id, store_number, location_name,
		       cages_delivered, cages_returned, sequence_order
		FROM stops WHERE route_id = ?
		ORDER BY sequence_order ASC`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stops: %w", err)
	}
	defer rows.Close()

	var stops []tracker.Stop
	for rows.Next() {
		var st tracker.Stop
		err := rows.Scan(&st.ID, &st.RouteID, &st.StoreNumber, &st.LocationName,
			&st.CagesDelivered, &st.CagesReturned, &st.SequenceOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

func insertRoutes(ctx context.Context, tx *sql.Tx, routes []tracker.Route) error {
	for _, r := range routes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO routes (id, shift_id, sequence_order)
			VALUES (?, ?, ?)`, r.ID, r.ShiftID, r.SequenceOrder)
		if err != nil {
			return fmt.Errorf("failed to insert route: %w", err)
		}
		for _, st := range r.Stops {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO stops
				(id, route_id, store_number, location_name,
				 cages_delivered, cages_returned, sequence_order)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				st.ID, st.RouteID, st.StoreNumber, st.LocationName,
				st.CagesDelivered, st.CagesReturned, st.SequenceOrder)
			if err != nil {
				return fmt.Errorf("failed to insert stop: %w", err)
			}
		}
	}
	return nil
}

// =============================================================================
// SETTLEMENTS (tracker.SettlementStore)
// =============================================================================

func (s *Store) UpsertSettlement(ctx context.Context, st *tracker.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO period_settlements
		(id, user_id, start_date, end_date, actual_amount, note, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, start_date, end_date) DO UPDATE SET
			actual_amount = excluded.actual_amount,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		st.ID, st.UserID, st.StartDate, st.EndDate,
		st.ActualAmount.String(), st.Note,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert settlement: %w", err)
	}

	// On conflict the stored row keeps its original ID; read it back so
	// the caller holds the canonical one.
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM period_settlements
		WHERE user_id = ? AND start_date = ? AND end_date = ?`,
		st.UserID, st.StartDate, st.EndDate).Scan(&st.ID)
	if err != nil {
		return fmt.Errorf("failed to read back settlement id: %w", err)
	}
	return nil
}

func (s *Store) GetSettlement(ctx context.Context, userID, startDate, endDate string) (*tracker.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, start_date, end_date, actual_amount, note
		FROM period_settlements
		WHERE user_id = ? AND start_date = ? AND end_date = ?`,
		userID, startDate, endDate)

	st, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, tracker.ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) ListSettlements(ctx context.Context, userID string) ([]tracker.Settlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, start_date, end_date, actual_amount, note
		FROM period_settlements
		WHERE user_id = ?
		ORDER BY start_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var result []tracker.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (tracker.Shift, error) {
	var (
		sh        tracker.Shift
		createdAt string
	)
	err := row.Scan(&sh.ID, &sh.UserID, &sh.Date, &sh.StartTime, &sh.EndTime,
		&sh.StartKM, &sh.EndKM, &sh.TruckReg, &sh.TrailerID,
		&sh.Refuel, &sh.Notes, &createdAt)
	if err != nil {
		return tracker.Shift{}, err
	}
	sh.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return sh, nil
}

func scanSettlement(row rowScanner) (tracker.Settlement, error) {
	var (
		st     tracker.Settlement
		amount string
	)
	err := row.Scan(&st.ID, &st.UserID, &st.StartDate, &st.EndDate, &amount, &st.Note)
	if err != nil {
		return tracker.Settlement{}, err
	}
	st.ActualAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return tracker.Settlement{}, fmt.Errorf("corrupt amount column %q: %w", amount, err)
	}
	return st, nil
}

// assignIDs fills in missing IDs and parent links across the shift tree.
func assignIDs(shift *tracker.Shift) {
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

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
