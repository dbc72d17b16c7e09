/*
escalation.go - Escalation due-date calculation

PURPOSE:
  Computes the next actionable due date for a task from its base due date
  and a chain of stage durations. Stage transitions themselves are external
  (an operator or scheduler advances the stage); this file only computes
  dates.

STAGES:
  None -> Stage1 -> Stage2 -> Notified (terminal)

FORMULA:
  The next due date accumulates, from the base due date, the duration
  fields for stages already passed or currently active:

    None:     base + stage1
    Stage1:   base + stage1 + stage2
    Stage2:   base + stage1 + stage2 + stage3
    Notified: no further date

  Any required duration missing for the current stage falls back to the
  base due date itself. That is a defensive default, not an error path:
  a half-configured task still gets a sensible deadline instead of a
  failure in the middle of a report.

OVERDUE:
  Dates are compared at day granularity; time-of-day is ignored.
*/
package engine

// =============================================================================
// TASK - Read model
// =============================================================================

type EscalationStage string

const (
	StageNone     EscalationStage = "none"
	Stage1        EscalationStage = "stage1"
	Stage2        EscalationStage = "stage2"
	StageNotified EscalationStage = "notified"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// Task carries the fields the calculator reads. The task subsystem owns the
// record; the engine never advances Stage or Status.
type Task struct {
	ID          TaskID
	BaseDueDate *Day // nil when unset
	Stage       EscalationStage
	Status      TaskStatus

	// Stage durations in days; nil when not configured.
	Stage1Days *int
	Stage2Days *int
	Stage3Days *int
}

// =============================================================================
// DUE DATE CALCULATION
// =============================================================================

// DueDate is the calculator's result. Date is nil when the task has no base
// due date or the escalation chain is exhausted.
type DueDate struct {
	Date    *Day
	Overdue bool
}

// NextDueDate computes the task's next actionable due date as of today.
// It never fails: missing durations fall back to the base due date, done
// tasks and tasks without a base date are never overdue, and the terminal
// stage yields no further date.
func NextDueDate(t Task, today Day) DueDate {
	if t.BaseDueDate == nil {
		return DueDate{}
	}
	if t.Status == TaskDone {
		return DueDate{Date: t.BaseDueDate}
	}

	base := *t.BaseDueDate
	var due Day
	switch t.Stage {
	case StageNone:
		if t.Stage1Days == nil {
			due = base
		} else {
			due = base.AddDays(*t.Stage1Days)
		}
	case Stage1:
		if t.Stage1Days == nil || t.Stage2Days == nil {
			due = base
		} else {
			due = base.AddDays(*t.Stage1Days + *t.Stage2Days)
		}
	case Stage2:
		if t.Stage1Days == nil || t.Stage2Days == nil || t.Stage3Days == nil {
			due = base
		} else {
			due = base.AddDays(*t.Stage1Days + *t.Stage2Days + *t.Stage3Days)
		}
	case StageNotified:
		// Terminal: no further date.
		return DueDate{}
	default:
		due = base
	}

	return DueDate{Date: &due, Overdue: due.Before(today)}
}

// FormatDueDate renders a due date for callers that surface strings. A task
// with no computable date shows "none".
func FormatDueDate(d DueDate) string {
	if d.Date == nil {
		return "none"
	}
	return d.Date.String()
}
