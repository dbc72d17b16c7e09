/*
store.go - Persistence interfaces

PURPOSE:
  Defines the boundary between the engine and the database. Implementations
  exist for SQLite (store/sqlite) and in-memory (engine/store).

APPEND-ONLY EVENTS:
  Attendance events are immutable once written. EventStore exposes Append
  and reads only - no update, no delete. Corrections are appended as new
  events by an authorized corrector.

IDEMPOTENCY:
  AppendEvent rejects a duplicate idempotency key with
  ErrDuplicateIdempotencyKey. This protects against re-ingesting the same
  punch; it does NOT make the overtime transition idempotent - callers must
  serialize writes for the same employee (see overtime.go).

TRANSACTIONS:
  The overtime transition persists the event, the balance update, and any
  emitted comp-off units atomically. TxStore.WithTx provides that scope.
*/
package engine

import (
	"context"
	"time"
)

// =============================================================================
// EVENT STORE - Append-only attendance event log
// =============================================================================

type EventStore interface {
	// AppendEvent persists one event. Fails with ErrDuplicateIdempotencyKey
	// if the key already exists. This is the ONLY write operation.
	AppendEvent(ctx context.Context, ev AttendanceEvent) error

	// EventsInRange returns an employee's events with timestamps in
	// [from, to], in non-decreasing timestamp order.
	EventsInRange(ctx context.Context, employee EmployeeID, from, to time.Time) ([]AttendanceEvent, error)

	// LastEventBefore returns the employee's most recent event of the given
	// kind strictly before the instant, or nil if none exists.
	LastEventBefore(ctx context.Context, employee EmployeeID, kind EventKind, before time.Time) (*AttendanceEvent, error)
}

// =============================================================================
// LEAVE STORE
// =============================================================================

type LeaveStore interface {
	SaveLeave(ctx context.Context, g LeaveGrant) error

	// LeavesOverlapping returns grants of any status whose interval
	// intersects [from, to]. The classifier filters to approved.
	LeavesOverlapping(ctx context.Context, employee EmployeeID, from, to Day) ([]LeaveGrant, error)
}

// =============================================================================
// BALANCE STORE - Overtime bank
// =============================================================================

type BalanceStore interface {
	// Balance returns the employee's overtime balance, zero-valued if the
	// employee has never banked overtime.
	Balance(ctx context.Context, employee EmployeeID) (OvertimeBalance, error)

	SaveBalance(ctx context.Context, b OvertimeBalance) error

	// ResetMonthToDate zeroes MonthToDate for all employees. Banked is
	// untouched. Invoked at the first instant of each calendar month.
	ResetMonthToDate(ctx context.Context) error
}

// =============================================================================
// COMP-OFF STORE
// =============================================================================

type CompOffStore interface {
	SaveCompOff(ctx context.Context, u CompOffUnit) error
	CompOffUnits(ctx context.Context, employee EmployeeID) ([]CompOffUnit, error)
}

// =============================================================================
// TASK STORE
// =============================================================================

type TaskStore interface {
	Task(ctx context.Context, id TaskID) (*Task, error)
	SaveTask(ctx context.Context, t Task) error

	// OpenTasks returns tasks not yet Done and not yet at the terminal
	// escalation stage, for the due-date scan.
	OpenTasks(ctx context.Context) ([]Task, error)
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

type EmployeeStore interface {
	Employee(ctx context.Context, id EmployeeID) (*Employee, error)
	SaveEmployee(ctx context.Context, e Employee) error
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// COMPOSITE STORE
// =============================================================================

// Store bundles every persistence concern the engine touches.
type Store interface {
	EventStore
	LeaveStore
	BalanceStore
	CompOffStore
	TaskStore
	EmployeeStore
}

// TxStore wraps Store with transaction support. The overtime transition
// requires it: event append, balance write, and comp-off emission either
// all commit or none do.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back; otherwise it is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
