/*
recurrence.go - Recurring holiday rule evaluation

PURPOSE:
  Decides whether a calendar date matches an "Nth weekday of month" rule,
  subject to a monthly floating-leave budget.

STATELESSNESS:
  MatchesRecurring is a pure function. Budget tracking belongs to the
  caller: on a true match the caller must increment its consumed counter
  before evaluating the next day in the same scan. Keeping the counter out
  of this package makes the evaluator trivially testable and lets scans for
  different employees run independently.

BUDGET GATE:
  A rule only matches while consumed < allowance for the month. An allowance
  of zero is valid and intentional: the rule can then never match (the role
  category has no floating recurring holidays).
*/
package engine

// MatchesRecurring reports whether day satisfies the rule given the
// floating-leave budget already consumed this month.
//
// The occurrence index of the day's weekday is the count of matching
// weekdays from the 1st of the month up to and including the day itself.
func MatchesRecurring(day Day, rule RecurringHolidayRule, allowance, consumed int) bool {
	if day.Weekday() != rule.Weekday {
		return false
	}
	if day.WeekdayOccurrence() != rule.Occurrence {
		return false
	}
	return consumed < allowance
}
