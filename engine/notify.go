package engine

import (
	"context"
	"log"
)

// =============================================================================
// NOTIFIER - Fire-and-forget boundary to the notification subsystem
// =============================================================================

// Notifier receives the two event types the engine raises. Delivery is the
// notification subsystem's concern: methods return nothing and the engine
// never blocks or fails on a notification.
type Notifier interface {
	// CompOffEarned fires once per conversion, with the number of units
	// emitted in that transition. Sent to the employee and, if present,
	// their reporting manager.
	CompOffEarned(ctx context.Context, employee EmployeeID, manager EmployeeID, unitCount int)

	// EscalationDue fires when a task's computed due date is reached or
	// lapsed.
	EscalationDue(ctx context.Context, task TaskID, due Day, overdue bool)
}

// NopNotifier discards all notifications. Used in tests and when the
// notification subsystem is not wired.
type NopNotifier struct{}

func (NopNotifier) CompOffEarned(context.Context, EmployeeID, EmployeeID, int) {}
func (NopNotifier) EscalationDue(context.Context, TaskID, Day, bool)           {}

// LogNotifier writes notifications to the process log. The default until a
// real delivery channel is wired in.
type LogNotifier struct{}

func NewLogNotifier() LogNotifier { return LogNotifier{} }

func (LogNotifier) CompOffEarned(_ context.Context, employee EmployeeID, manager EmployeeID, unitCount int) {
	if manager != "" {
		log.Printf("[Notify] comp-off earned: employee=%s manager=%s units=%d", employee, manager, unitCount)
		return
	}
	log.Printf("[Notify] comp-off earned: employee=%s units=%d", employee, unitCount)
}

func (LogNotifier) EscalationDue(_ context.Context, task TaskID, due Day, overdue bool) {
	log.Printf("[Notify] escalation due: task=%s due=%s overdue=%v", task, due, overdue)
}
