/*
overtime.go - Overtime accrual and comp-off conversion

PURPOSE:
  A per-employee state machine driven by check-out events:

    Idle -> SessionOpen (check-in) -> Idle (check-out, emits accrual)

  On check-out, the session's hours beyond the role category's daily
  ceiling accrue to the employee's overtime bank. Whenever the bank holds
  at least one conversion quantum (8 hours), whole quanta are converted
  into discrete comp-off units.

TRANSITION (check-out):
  1. Find the most recent check-in strictly before the check-out. None
     found means a malformed session: the transition is a no-op, not an
     error. Overtime for sessions with missing check-ins is silently not
     computed - the event stream is sparse and user-correctable.
  2. sessionHours = checkOut - checkIn, in hours.
  3. ceiling = thresholds[category].StandardDailyHoursMax. A category with
     no thresholds is non-overtime-eligible; the transition stops here.
  4. overtime = sessionHours - ceiling, when positive; added to both
     Banked and MonthToDate.
  5. while Banked >= 8: emit one comp-off unit, subtract exactly 8.
     Conversion is a function of the balance, not of this session's
     overtime, so one transition may emit several units if the bank
     accumulated across earlier sessions.
  6. Each conversion raises one CompOffEarned notification carrying the
     unit count, to the employee and their reporting manager.

ATOMICITY & ORDERING:
  The event append, the balance write, and the emitted units commit in one
  transaction. The transition is NOT idempotent: re-running it on the same
  check-out double-banks the overtime. Callers must serialize writes per
  employee and deliver events in non-decreasing timestamp order. Writes for
  different employees are fully independent.

MONTH ROLLOVER:
  MonthToDate resets to zero for all employees at the first instant of each
  calendar month (see api/scheduler.go). The reset never touches Banked.
*/
package engine

import (
	"context"
	"fmt"
)

// CompOffConversionHours is the conversion quantum: one comp-off unit per
// this many banked overtime hours.
const CompOffConversionHours = 8

// =============================================================================
// OVERTIME ENGINE
// =============================================================================

type OvertimeEngine struct {
	Store    TxStore
	Rules    RuleProvider
	Notifier Notifier
}

func NewOvertimeEngine(store TxStore, rules RuleProvider, notifier Notifier) *OvertimeEngine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &OvertimeEngine{Store: store, Rules: rules, Notifier: notifier}
}

// CheckOutResult describes what one ingested event produced. For non
// check-out events and no-op transitions the zero amounts stand.
type CheckOutResult struct {
	// Matched is true when a prior check-in was found for the session.
	Matched bool

	SessionHours Hours
	Overtime     Hours
	Balance      OvertimeBalance
	Emitted      []CompOffUnit
}

// Ingest appends an attendance event and, for check-outs, runs the accrual
// transition. Everything persists in a single transaction; notifications
// fire only after commit.
func (e *OvertimeEngine) Ingest(ctx context.Context, ev AttendanceEvent) (*CheckOutResult, error) {
	emp, err := e.Store.Employee(ctx, ev.EmployeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	// One rule-set snapshot per transition.
	rules, err := e.Rules.Rules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRulesUnavailable, err)
	}

	result := &CheckOutResult{}
	err = e.Store.WithTx(ctx, func(s Store) error {
		if err := s.AppendEvent(ctx, ev); err != nil {
			return err
		}
		if ev.Kind != KindCheckOut {
			return nil
		}
		return transition(ctx, s, *emp, rules, ev, result)
	})
	if err != nil {
		return nil, err
	}

	if len(result.Emitted) > 0 {
		e.Notifier.CompOffEarned(ctx, emp.ID, emp.ManagerID, len(result.Emitted))
	}
	return result, nil
}

// ResetMonthToDate zeroes every employee's month-to-date counter. Banked
// balances are unaffected.
func (e *OvertimeEngine) ResetMonthToDate(ctx context.Context) error {
	return e.Store.ResetMonthToDate(ctx)
}

// =============================================================================
// TRANSITION
// =============================================================================

func transition(ctx context.Context, s Store, emp Employee, rules RuleSet, checkOut AttendanceEvent, result *CheckOutResult) error {
	checkIn, err := s.LastEventBefore(ctx, emp.ID, KindCheckIn, checkOut.Timestamp)
	if err != nil {
		return err
	}
	if checkIn == nil {
		// Malformed session: nothing is computed.
		return nil
	}

	result.Matched = true
	result.SessionHours = HoursBetween(checkIn.Timestamp, checkOut.Timestamp)

	thresholds, ok := rules.ThresholdsFor(emp.Category)
	if !ok {
		// No thresholds configured: non-overtime-eligible.
		return nil
	}

	balance, err := s.Balance(ctx, emp.ID)
	if err != nil {
		return err
	}
	balance.EmployeeID = emp.ID
	result.Balance = balance

	if !result.SessionHours.GreaterThan(thresholds.StandardDailyHoursMax) {
		return nil
	}

	overtime := result.SessionHours.Sub(thresholds.StandardDailyHoursMax)
	result.Overtime = overtime
	balance.Banked = balance.Banked.Add(overtime)
	balance.MonthToDate = balance.MonthToDate.Add(overtime)

	// Convert whole quanta. The loop runs against the full bank so a balance
	// accumulated across several sessions converts in one transition.
	quantum := HoursFromInt(CompOffConversionHours)
	for i := 0; balance.Banked.GreaterOrEqual(quantum); i++ {
		unit := CompOffUnit{
			ID:         compOffID(emp.ID, checkOut, i),
			EmployeeID: emp.ID,
			EarnedDate: checkOut.Day(),
			Reason:     "overtime conversion",
		}
		if err := s.SaveCompOff(ctx, unit); err != nil {
			return err
		}
		balance.Banked = balance.Banked.Sub(quantum)
		result.Emitted = append(result.Emitted, unit)
	}

	if err := s.SaveBalance(ctx, balance); err != nil {
		return err
	}
	result.Balance = balance
	return nil
}

func compOffID(emp EmployeeID, checkOut AttendanceEvent, seq int) string {
	return fmt.Sprintf("comp-%s-%d-%d", emp, checkOut.Timestamp.UnixNano(), seq)
}
