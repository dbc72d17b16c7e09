/*
Package engine implements the temporal accounting and escalation core for a
workforce-management system.

PURPOSE:
  This package turns raw, irregularly-timed events (clock punches, leave
  grants, holiday rules, overtime minutes) into derived, rule-governed
  outcomes that drive payroll, compliance, and task deadlines:

  - Day classification: exactly one category per calendar day
    (Worked, Leave, Holiday, Week-Off, Unpaid), resolved by a fixed
    priority order.
  - Recurring holiday evaluation: "Nth weekday of the month" rules,
    gated by a monthly floating-leave budget.
  - Overtime accrual: per-session overtime from paired check-in/check-out
    events, banked and converted into discrete comp-off units.
  - Escalation due dates: multi-stage deadline chains for tasks.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: a decimal hour quantity (never float64)
  - AttendanceEvent: an immutable clock punch
  - LeaveGrant: an approved/pending/rejected leave interval
  - OvertimeBalance: per-employee banked and month-to-date overtime
  - CompOffUnit: a discrete reward earned by converting banked overtime

DESIGN PRINCIPLES:
  1. Immutability: attendance events are never edited in place; corrections
     are appended as new events.
  2. Precision: decimal.Decimal for all hour arithmetic, so the overtime
     bank never drifts.
  3. Determinism: every computation is a pure function of already-persisted
     rows; callers provide events in non-decreasing timestamp order per
     employee.
  4. Silent degradation: payroll-adjacent computations never crash a report;
     missing configuration falls back to the most conservative outcome.

SEE ALSO:
  - day.go: calendar-day arithmetic
  - classify.go: day classification
  - overtime.go: overtime accrual and comp-off conversion
  - escalation.go: task due-date chains
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Decimal hour quantity
// =============================================================================

// Hours is an hour quantity backed by decimal arithmetic. Using decimals
// keeps the overtime bank exact: conversions subtract exactly 8, never
// 7.999999.
type Hours struct {
	Value decimal.Decimal
}

func NewHours(v float64) Hours     { return Hours{Value: decimal.NewFromFloat(v)} }
func HoursFromInt(v int) Hours     { return Hours{Value: decimal.NewFromInt(int64(v))} }
func ZeroHours() Hours             { return Hours{Value: decimal.Zero} }

// MustParseHours parses a decimal string, returning zero hours on failure.
// Used when reading persisted balances; a corrupt row degrades to zero
// rather than failing a report.
func MustParseHours(s string) Hours {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroHours()
	}
	return Hours{Value: d}
}

// HoursBetween returns the elapsed time between two instants, in hours.
func HoursBetween(from, to time.Time) Hours {
	minutes := to.Sub(from).Minutes()
	return Hours{Value: decimal.NewFromFloat(minutes).Div(decimal.NewFromInt(60))}
}

func (h Hours) Add(o Hours) Hours            { return Hours{Value: h.Value.Add(o.Value)} }
func (h Hours) Sub(o Hours) Hours            { return Hours{Value: h.Value.Sub(o.Value)} }
func (h Hours) IsZero() bool                 { return h.Value.IsZero() }
func (h Hours) IsNegative() bool             { return h.Value.IsNegative() }
func (h Hours) IsPositive() bool             { return h.Value.IsPositive() }
func (h Hours) GreaterThan(o Hours) bool     { return h.Value.GreaterThan(o.Value) }
func (h Hours) GreaterOrEqual(o Hours) bool  { return h.Value.GreaterThanOrEqual(o.Value) }
func (h Hours) LessThan(o Hours) bool        { return h.Value.LessThan(o.Value) }
func (h Hours) Float64() float64             { f, _ := h.Value.Float64(); return f }
func (h Hours) String() string               { return h.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type EventID string
type TaskID string

// RoleCategory groups employees under a shared set of thresholds.
type RoleCategory string

const (
	CategoryOffice RoleCategory = "office"
	CategoryField  RoleCategory = "field"
	CategorySite   RoleCategory = "site"
)

// =============================================================================
// ATTENDANCE EVENT - Immutable clock punch
// =============================================================================

type EventKind string

const (
	KindCheckIn  EventKind = "check_in"
	KindCheckOut EventKind = "check_out"
	KindBreakIn  EventKind = "break_in"
	KindBreakOut EventKind = "break_out"
)

// AttendanceEvent is a single clock punch. Events are immutable once
// written; corrections are appended as new events, never edited in place.
type AttendanceEvent struct {
	ID            EventID
	EmployeeID    EmployeeID
	Timestamp     time.Time
	Kind          EventKind
	LocationLabel string

	// IdempotencyKey guards against double-ingestion of the same punch
	// (network retries, double-taps on a capture device).
	IdempotencyKey string

	// Audit fields
	CreatedBy string // capture subsystem or an authorized corrector
	CreatedAt time.Time
}

// Day returns the calendar day the event falls on.
func (e AttendanceEvent) Day() Day { return DayOf(e.Timestamp) }

// =============================================================================
// LEAVE GRANT
// =============================================================================

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveGrant is a leave interval. Both endpoints are inclusive: every date
// in [Start, End] counts as a leave day. Only approved grants participate
// in day classification.
type LeaveGrant struct {
	ID         string
	EmployeeID EmployeeID
	Start      Day
	End        Day
	Type       string
	Status     LeaveStatus
}

// Covers reports whether the grant is approved and includes the given day.
func (g LeaveGrant) Covers(d Day) bool {
	return g.Status == LeaveApproved && g.Start.BeforeOrEqual(d) && d.BeforeOrEqual(g.End)
}

// =============================================================================
// OVERTIME BALANCE
// =============================================================================

// OvertimeBalance tracks unconverted overtime per employee.
//
// INVARIANTS:
//   - Banked >= 0; it only decreases by exact multiples of the comp-off
//     conversion quantum at conversion time.
//   - MonthToDate >= 0; it resets to zero at the first instant of each
//     calendar month, independently of Banked.
type OvertimeBalance struct {
	EmployeeID  EmployeeID
	Banked      Hours
	MonthToDate Hours
}

// =============================================================================
// COMP-OFF UNIT - Discrete overtime reward
// =============================================================================

// CompOffUnit is one paid day off earned by converting banked overtime.
// Units are created only by the conversion step and never mutated.
type CompOffUnit struct {
	ID         string
	EmployeeID EmployeeID
	EarnedDate Day
	Reason     string
}

// =============================================================================
// EMPLOYEE - Read model for classification and notification routing
// =============================================================================

// Employee carries the fields the engine reads: the role category that
// selects thresholds and recurring rules, the opt-in set for selectable
// fixed holidays, and the manager to copy on comp-off notifications.
type Employee struct {
	ID        EmployeeID
	Name      string
	Category  RoleCategory
	ManagerID EmployeeID // empty if none

	// OptedHolidays holds the names of employee-selectable fixed holidays
	// this employee has opted into.
	OptedHolidays []string
}

// OptedInto reports whether the employee opted into the named holiday.
func (e Employee) OptedInto(name string) bool {
	for _, h := range e.OptedHolidays {
		if h == name {
			return true
		}
	}
	return false
}
