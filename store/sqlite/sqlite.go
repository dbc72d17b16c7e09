/*
Package sqlite provides a SQLite-backed implementation of engine.TxStore.

PURPOSE:
  Persists everything the engine touches: the append-only attendance event
  log, leave grants, overtime balances, comp-off units, tasks, employees,
  and the rulebook JSON. The same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The events table has no UPDATE or DELETE path. Corrections are appended
  as new events by an authorized corrector.

IDEMPOTENCY:
  events.idempotency_key carries a UNIQUE index; re-ingesting the same
  punch fails with engine.ErrDuplicateIdempotencyKey.

TRANSACTIONS:
  WithTx wraps the overtime transition: event append, balance write, and
  comp-off emission commit atomically. Concurrent check-outs for the SAME
  employee must be serialized by the caller; the store-level mutex only
  protects SQLite's single-writer constraint, not transition idempotence.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/engine.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine/store.go: interface definitions
  - engine/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/temporal-engine/engine"
)

const (
	// tsFormat is fixed-width with all nine fractional digits and a literal
	// UTC 'Z', so lexicographic order of stored strings equals chronological
	// order. RFC3339Nano would trim trailing zeros and break the range and
	// "most recent before" queries, which compare timestamps as TEXT.
	// Timestamps must be converted to UTC before formatting.
	tsFormat  = "2006-01-02T15:04:05.000000000Z"
	dayFormat = "2006-01-02"
)

// Store implements engine.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ engine.TxStore = (*Store)(nil)

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
	-- Attendance events (append-only; corrections are new rows)
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		ts TEXT NOT NULL,
		kind TEXT NOT NULL,
		location_label TEXT,
		idempotency_key TEXT UNIQUE,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: "most recent check-in strictly before" lookups
	CREATE INDEX IF NOT EXISTS idx_events_employee_kind_ts
		ON events(employee_id, kind, ts DESC);
	CREATE INDEX IF NOT EXISTS idx_events_employee_ts
		ON events(employee_id, ts);

	-- Leave grants
	CREATE TABLE IF NOT EXISTS leave_grants (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		leave_type TEXT,
		status TEXT NOT NULL DEFAULT 'pending'
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee_dates
		ON leave_grants(employee_id, start_date, end_date);

	-- Overtime balances (hours stored as decimal strings, never floats)
	CREATE TABLE IF NOT EXISTS overtime_balances (
		employee_id TEXT PRIMARY KEY,
		banked TEXT NOT NULL DEFAULT '0',
		month_to_date TEXT NOT NULL DEFAULT '0',
		updated_at TEXT NOT NULL
	);

	-- Comp-off units (created only by conversion, never mutated)
	CREATE TABLE IF NOT EXISTS comp_off_units (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		earned_date TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_comp_off_employee
		ON comp_off_units(employee_id);

	-- Tasks (the engine reads duration fields and stage; the task
	-- subsystem owns everything else)
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		base_due_date TEXT,
		stage TEXT NOT NULL DEFAULT 'none',
		status TEXT NOT NULL DEFAULT 'todo',
		stage1_days INTEGER,
		stage2_days INTEGER,
		stage3_days INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_open
		ON tasks(status, stage);

	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		manager_id TEXT,
		opted_holidays_json TEXT
	);

	-- Rulebook (single-row JSON document, hot-reloadable)
	CREATE TABLE IF NOT EXISTS rulebook (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// EVENTS (engine.EventStore)
// =============================================================================

func (s *Store) AppendEvent(ctx context.Context, ev engine.AttendanceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendEvent(ctx, s.db, ev)
}

func appendEvent(ctx context.Context, db dbtx, ev engine.AttendanceEvent) error {
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO events (id, employee_id, ts, kind, location_label, idempotency_key, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		ev.EmployeeID,
		ev.Timestamp.UTC().Format(tsFormat),
		ev.Kind,
		ev.LocationLabel,
		nullString(ev.IdempotencyKey),
		ev.CreatedBy,
		createdAt.UTC().Format(tsFormat),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &engine.DuplicateEventError{
				EmployeeID:     ev.EmployeeID,
				Timestamp:      ev.Timestamp,
				IdempotencyKey: ev.IdempotencyKey,
			}
		}
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (s *Store) EventsInRange(ctx context.Context, employee engine.EmployeeID, from, to time.Time) ([]engine.AttendanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return eventsInRange(ctx, s.db, employee, from, to)
}

func eventsInRange(ctx context.Context, db dbtx, employee engine.EmployeeID, from, to time.Time) ([]engine.AttendanceEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, employee_id, ts, kind, location_label, idempotency_key, created_by, created_at
		FROM events
		WHERE employee_id = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC`,
		employee, from.UTC().Format(tsFormat), to.UTC().Format(tsFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []engine.AttendanceEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) LastEventBefore(ctx context.Context, employee engine.EmployeeID, kind engine.EventKind, before time.Time) (*engine.AttendanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lastEventBefore(ctx, s.db, employee, kind, before)
}

func lastEventBefore(ctx context.Context, db dbtx, employee engine.EmployeeID, kind engine.EventKind, before time.Time) (*engine.AttendanceEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, employee_id, ts, kind, location_label, idempotency_key, created_by, created_at
		FROM events
		WHERE employee_id = ? AND kind = ? AND ts < ?
		ORDER BY ts DESC
		LIMIT 1`,
		employee, kind, before.UTC().Format(tsFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	ev, err := scanEvent(rows)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func scanEvent(rows *sql.Rows) (engine.AttendanceEvent, error) {
	var (
		ev             engine.AttendanceEvent
		ts             string
		locationLabel  sql.NullString
		idempotencyKey sql.NullString
		createdBy      sql.NullString
		createdAt      string
	)
	if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ts, &ev.Kind, &locationLabel, &idempotencyKey, &createdBy, &createdAt); err != nil {
		return ev, fmt.Errorf("failed to scan event: %w", err)
	}
	ev.Timestamp, _ = time.Parse(tsFormat, ts)
	ev.LocationLabel = locationLabel.String
	ev.IdempotencyKey = idempotencyKey.String
	ev.CreatedBy = createdBy.String
	ev.CreatedAt, _ = time.Parse(tsFormat, createdAt)
	return ev, nil
}

// =============================================================================
// LEAVE GRANTS (engine.LeaveStore)
// =============================================================================

func (s *Store) SaveLeave(ctx context.Context, g engine.LeaveGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLeave(ctx, s.db, g)
}

func saveLeave(ctx context.Context, db dbtx, g engine.LeaveGrant) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO leave_grants (id, employee_id, start_date, end_date, leave_type, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			leave_type = excluded.leave_type,
			status = excluded.status`,
		g.ID, g.EmployeeID, g.Start.String(), g.End.String(), g.Type, g.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save leave grant: %w", err)
	}
	return nil
}

func (s *Store) LeavesOverlapping(ctx context.Context, employee engine.EmployeeID, from, to engine.Day) ([]engine.LeaveGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leavesOverlapping(ctx, s.db, employee, from, to)
}

func leavesOverlapping(ctx context.Context, db dbtx, employee engine.EmployeeID, from, to engine.Day) ([]engine.LeaveGrant, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, employee_id, start_date, end_date, leave_type, status
		FROM leave_grants
		WHERE employee_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC`,
		employee, to.String(), from.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave grants: %w", err)
	}
	defer rows.Close()

	var grants []engine.LeaveGrant
	for rows.Next() {
		var (
			g          engine.LeaveGrant
			start, end string
			leaveType  sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.EmployeeID, &start, &end, &leaveType, &g.Status); err != nil {
			return nil, fmt.Errorf("failed to scan leave grant: %w", err)
		}
		g.Start = parseDay(start)
		g.End = parseDay(end)
		g.Type = leaveType.String
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// =============================================================================
// OVERTIME BALANCES (engine.BalanceStore)
// =============================================================================

func (s *Store) Balance(ctx context.Context, employee engine.EmployeeID) (engine.OvertimeBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return balance(ctx, s.db, employee)
}

func balance(ctx context.Context, db dbtx, employee engine.EmployeeID) (engine.OvertimeBalance, error) {
	zero := engine.OvertimeBalance{
		EmployeeID:  employee,
		Banked:      engine.ZeroHours(),
		MonthToDate: engine.ZeroHours(),
	}

	var banked, monthToDate string
	err := db.QueryRowContext(ctx,
		"SELECT banked, month_to_date FROM overtime_balances WHERE employee_id = ?",
		employee,
	).Scan(&banked, &monthToDate)
	if err == sql.ErrNoRows {
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("failed to query balance: %w", err)
	}

	return engine.OvertimeBalance{
		EmployeeID:  employee,
		Banked:      engine.MustParseHours(banked),
		MonthToDate: engine.MustParseHours(monthToDate),
	}, nil
}

func (s *Store) SaveBalance(ctx context.Context, b engine.OvertimeBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveBalance(ctx, s.db, b)
}

func saveBalance(ctx context.Context, db dbtx, b engine.OvertimeBalance) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO overtime_balances (employee_id, banked, month_to_date, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			banked = excluded.banked,
			month_to_date = excluded.month_to_date,
			updated_at = excluded.updated_at`,
		b.EmployeeID, b.Banked.String(), b.MonthToDate.String(),
		time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func (s *Store) ResetMonthToDate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resetMonthToDate(ctx, s.db)
}

func resetMonthToDate(ctx context.Context, db dbtx) error {
	_, err := db.ExecContext(ctx,
		"UPDATE overtime_balances SET month_to_date = '0', updated_at = ?",
		time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to reset month-to-date: %w", err)
	}
	return nil
}

// =============================================================================
// COMP-OFF UNITS (engine.CompOffStore)
// =============================================================================

func (s *Store) SaveCompOff(ctx context.Context, u engine.CompOffUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCompOff(ctx, s.db, u)
}

func saveCompOff(ctx context.Context, db dbtx, u engine.CompOffUnit) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO comp_off_units (id, employee_id, earned_date, reason, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.EmployeeID, u.EarnedDate.String(), u.Reason,
		time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save comp-off unit: %w", err)
	}
	return nil
}

func (s *Store) CompOffUnits(ctx context.Context, employee engine.EmployeeID) ([]engine.CompOffUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return compOffUnits(ctx, s.db, employee)
}

func compOffUnits(ctx context.Context, db dbtx, employee engine.EmployeeID) ([]engine.CompOffUnit, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, employee_id, earned_date, reason
		FROM comp_off_units
		WHERE employee_id = ?
		ORDER BY earned_date ASC, id ASC`,
		employee,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query comp-off units: %w", err)
	}
	defer rows.Close()

	var units []engine.CompOffUnit
	for rows.Next() {
		var (
			u      engine.CompOffUnit
			earned string
			reason sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.EmployeeID, &earned, &reason); err != nil {
			return nil, fmt.Errorf("failed to scan comp-off unit: %w", err)
		}
		u.EarnedDate = parseDay(earned)
		u.Reason = reason.String
		units = append(units, u)
	}
	return units, rows.Err()
}

// =============================================================================
// TASKS (engine.TaskStore)
// =============================================================================

func (s *Store) Task(ctx context.Context, id engine.TaskID) (*engine.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return task(ctx, s.db, id)
}

func task(ctx context.Context, db dbtx, id engine.TaskID) (*engine.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, base_due_date, stage, status, stage1_days, stage2_days, stage3_days
		FROM tasks WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	t, err := scanTask(rows)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) SaveTask(ctx context.Context, t engine.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveTask(ctx, s.db, t)
}

func saveTask(ctx context.Context, db dbtx, t engine.Task) error {
	var baseDue sql.NullString
	if t.BaseDueDate != nil {
		baseDue = sql.NullString{String: t.BaseDueDate.String(), Valid: true}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO tasks (id, base_due_date, stage, status, stage1_days, stage2_days, stage3_days)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_due_date = excluded.base_due_date,
			stage = excluded.stage,
			status = excluded.status,
			stage1_days = excluded.stage1_days,
			stage2_days = excluded.stage2_days,
			stage3_days = excluded.stage3_days`,
		t.ID, baseDue, t.Stage, t.Status,
		nullInt(t.Stage1Days), nullInt(t.Stage2Days), nullInt(t.Stage3Days),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

func (s *Store) OpenTasks(ctx context.Context) ([]engine.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return openTasks(ctx, s.db)
}

func openTasks(ctx context.Context, db dbtx) ([]engine.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, base_due_date, stage, status, stage1_days, stage2_days, stage3_days
		FROM tasks
		WHERE status != 'done' AND stage != 'notified'
		ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []engine.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(rows *sql.Rows) (engine.Task, error) {
	var (
		t       engine.Task
		baseDue sql.NullString
		s1      sql.NullInt64
		s2      sql.NullInt64
		s3      sql.NullInt64
	)
	if err := rows.Scan(&t.ID, &baseDue, &t.Stage, &t.Status, &s1, &s2, &s3); err != nil {
		return t, fmt.Errorf("failed to scan task: %w", err)
	}
	if baseDue.Valid {
		d := parseDay(baseDue.String)
		t.BaseDueDate = &d
	}
	t.Stage1Days = intPtr(s1)
	t.Stage2Days = intPtr(s2)
	t.Stage3Days = intPtr(s3)
	return t, nil
}

// =============================================================================
// EMPLOYEES (engine.EmployeeStore)
// =============================================================================

func (s *Store) Employee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return employee(ctx, s.db, id)
}

func employee(ctx context.Context, db dbtx, id engine.EmployeeID) (*engine.Employee, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, category, manager_id, opted_holidays_json
		FROM employees WHERE id = ?`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	e, err := scanEmployee(rows)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveEmployee(ctx, s.db, e)
}

func saveEmployee(ctx context.Context, db dbtx, e engine.Employee) error {
	optedJSON, _ := json.Marshal(e.OptedHolidays)
	_, err := db.ExecContext(ctx, `
		INSERT INTO employees (id, name, category, manager_id, opted_holidays_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			manager_id = excluded.manager_id,
			opted_holidays_json = excluded.opted_holidays_json`,
		e.ID, e.Name, e.Category, e.ManagerID, string(optedJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEmployees(ctx, s.db)
}

func listEmployees(ctx context.Context, db dbtx) ([]engine.Employee, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, category, manager_id, opted_holidays_json
		FROM employees ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []engine.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(rows *sql.Rows) (engine.Employee, error) {
	var (
		e         engine.Employee
		managerID sql.NullString
		optedJSON sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.Name, &e.Category, &managerID, &optedJSON); err != nil {
		return e, fmt.Errorf("failed to scan employee: %w", err)
	}
	e.ManagerID = engine.EmployeeID(managerID.String)
	if optedJSON.Valid && optedJSON.String != "" {
		json.Unmarshal([]byte(optedJSON.String), &e.OptedHolidays)
	}
	return e, nil
}

// =============================================================================
// RULEBOOK - Persisted JSON configuration (outside engine.Store)
// =============================================================================

// SaveRulebook stores the rulebook JSON document.
func (s *Store) SaveRulebook(ctx context.Context, configJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rulebook (id, config_json, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at`,
		configJSON, time.Now().UTC().Format(tsFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save rulebook: %w", err)
	}
	return nil
}

// LoadRulebook returns the stored rulebook JSON, or "" if none is stored.
func (s *Store) LoadRulebook(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx, "SELECT config_json FROM rulebook WHERE id = 1").Scan(&configJSON)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load rulebook: %w", err)
	}
	return configJSON, nil
}

// =============================================================================
// TRANSACTIONS (engine.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(engine.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes every operation through the open transaction.
type txStore struct {
	tx *sql.Tx
}

var _ engine.Store = (*txStore)(nil)

func (ts *txStore) AppendEvent(ctx context.Context, ev engine.AttendanceEvent) error {
	return appendEvent(ctx, ts.tx, ev)
}

func (ts *txStore) EventsInRange(ctx context.Context, employee engine.EmployeeID, from, to time.Time) ([]engine.AttendanceEvent, error) {
	return eventsInRange(ctx, ts.tx, employee, from, to)
}

func (ts *txStore) LastEventBefore(ctx context.Context, employee engine.EmployeeID, kind engine.EventKind, before time.Time) (*engine.AttendanceEvent, error) {
	return lastEventBefore(ctx, ts.tx, employee, kind, before)
}

func (ts *txStore) SaveLeave(ctx context.Context, g engine.LeaveGrant) error {
	return saveLeave(ctx, ts.tx, g)
}

func (ts *txStore) LeavesOverlapping(ctx context.Context, employee engine.EmployeeID, from, to engine.Day) ([]engine.LeaveGrant, error) {
	return leavesOverlapping(ctx, ts.tx, employee, from, to)
}

func (ts *txStore) Balance(ctx context.Context, employee engine.EmployeeID) (engine.OvertimeBalance, error) {
	return balance(ctx, ts.tx, employee)
}

func (ts *txStore) SaveBalance(ctx context.Context, b engine.OvertimeBalance) error {
	return saveBalance(ctx, ts.tx, b)
}

func (ts *txStore) ResetMonthToDate(ctx context.Context) error {
	return resetMonthToDate(ctx, ts.tx)
}

func (ts *txStore) SaveCompOff(ctx context.Context, u engine.CompOffUnit) error {
	return saveCompOff(ctx, ts.tx, u)
}

func (ts *txStore) CompOffUnits(ctx context.Context, employee engine.EmployeeID) ([]engine.CompOffUnit, error) {
	return compOffUnits(ctx, ts.tx, employee)
}

func (ts *txStore) Task(ctx context.Context, id engine.TaskID) (*engine.Task, error) {
	return task(ctx, ts.tx, id)
}

func (ts *txStore) SaveTask(ctx context.Context, t engine.Task) error {
	return saveTask(ctx, ts.tx, t)
}

func (ts *txStore) OpenTasks(ctx context.Context) ([]engine.Task, error) {
	return openTasks(ctx, ts.tx)
}

func (ts *txStore) Employee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	return employee(ctx, ts.tx, id)
}

func (ts *txStore) SaveEmployee(ctx context.Context, e engine.Employee) error {
	return saveEmployee(ctx, ts.tx, e)
}

func (ts *txStore) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	return listEmployees(ctx, ts.tx)
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func parseDay(s string) engine.Day {
	t, _ := time.Parse(dayFormat, s)
	return engine.DayOf(t)
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
