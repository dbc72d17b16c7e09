/*
classify.go - Day classification

PURPOSE:
  Assigns exactly one category to every calendar day in a range for one
  employee. The output drives paid-day counts for payroll and reporting
  dashboards; the classifier itself performs no persistence.

PRIORITY ORDER:
  Categories are evaluated in strict priority order, short-circuiting at
  the first match:

    1. Worked   - at least one check-in event on the day
    2. Leave    - inside an approved leave grant
    3. Holiday  - fixed holiday (opt-in honored), exact-date override,
                  or a budget-gated recurring rule match
    4. Week-Off - Sunday, plus any configured per-category week-off days
    5. Unpaid   - none of the above (a working day with no attendance)

  The order is an explicit predicate list, not buried control flow, so it
  is a visible, testable artifact. A day with both a check-in and an
  approved leave is Worked, never Leave.

WORKED LENIENCY:
  A check-in alone marks the day Worked; a missing check-out does not
  demote it. This protects against losing a day's pay to a forgotten
  checkout. Flagged for product review, preserved as-is here.

FLOATING-LEAVE BUDGET:
  Recurring-rule matches consume a monthly budget. The budget counter is an
  explicit accumulator threaded through the scan, reset whenever the scan
  crosses a month boundary. Callers should scan whole months atomically;
  a scan starting mid-month assumes no budget was consumed earlier in that
  month.
*/
package engine

// =============================================================================
// DAY CATEGORY
// =============================================================================

type DayCategory string

const (
	DayWorked  DayCategory = "worked"
	DayLeave   DayCategory = "leave"
	DayHoliday DayCategory = "holiday"
	DayWeekOff DayCategory = "week_off"
	DayUnpaid  DayCategory = "unpaid"
)

// DayClassification is the derived category for one (employee, date) pair.
// It is never stored; it is recomputed from events, grants, and rules.
type DayClassification struct {
	Date     Day
	Category DayCategory

	// Note carries the holiday or leave name when one applies, for display.
	Note string
}

// =============================================================================
// CLASSIFIER INPUT
// =============================================================================

// ClassifyInput bundles the already-materialized rows for one employee.
// Events must be in non-decreasing timestamp order.
type ClassifyInput struct {
	Employee Employee
	Events   []AttendanceEvent
	Leaves   []LeaveGrant
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier classifies days against one immutable rule-set snapshot.
// Fetch the snapshot once per call (RuleProvider.Rules), not once per day.
type Classifier struct {
	rules RuleSet
}

func NewClassifier(rules RuleSet) *Classifier {
	return &Classifier{rules: rules}
}

// scanState carries the per-scan accumulators: which days have a check-in,
// and how much floating-leave budget the current month has consumed.
type scanState struct {
	input  ClassifyInput
	rules  RuleSet
	worked map[Day]bool

	month            Day // first of the month currently being scanned
	floatingConsumed int
	allowance        int
}

// predicate pairs a category with its match function. Matches may return a
// display note (holiday name, leave type).
type predicate struct {
	category DayCategory
	match    func(s *scanState, d Day) (bool, string)
}

// classificationOrder is the fixed priority order. Ambiguities (a day
// matching several candidate rules) are resolved by position in this list,
// never by "last rule wins".
var classificationOrder = []predicate{
	{DayWorked, matchWorked},
	{DayLeave, matchLeave},
	{DayHoliday, matchHoliday},
	{DayWeekOff, matchWeekOff},
}

// ClassifyRange returns one classification per day in [start, end], in
// order, with no day omitted or duplicated. Each call is a fresh scan;
// re-invoke for new ranges.
func (c *Classifier) ClassifyRange(input ClassifyInput, start, end Day) ([]DayClassification, error) {
	if start.After(end) {
		return nil, &RangeError{Start: start, End: end}
	}

	state := &scanState{
		input:  input,
		rules:  c.rules,
		worked: workedDays(input.Events),
	}

	var result []DayClassification
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if !d.FirstOfMonth().Equal(state.month) {
			// Month boundary: the floating-leave budget is per month.
			state.month = d.FirstOfMonth()
			state.floatingConsumed = 0
			state.allowance = c.rules.FloatingAllowance(input.Employee.Category)
		}
		result = append(result, classifyDay(state, d))
	}
	return result, nil
}

// classifyDay dispatches through the ordered predicate list. Any detected
// inconsistency degrades to Unpaid rather than blocking report generation.
func classifyDay(s *scanState, d Day) DayClassification {
	for _, p := range classificationOrder {
		if ok, note := p.match(s, d); ok {
			return DayClassification{Date: d, Category: p.category, Note: note}
		}
	}
	return DayClassification{Date: d, Category: DayUnpaid}
}

// =============================================================================
// PREDICATES
// =============================================================================

// workedDays collects the days carrying at least one check-in event.
// Presence of a check-in alone is sufficient; check-out is not required.
func workedDays(events []AttendanceEvent) map[Day]bool {
	worked := make(map[Day]bool)
	for _, e := range events {
		if e.Kind == KindCheckIn {
			worked[e.Day()] = true
		}
	}
	return worked
}

func matchWorked(s *scanState, d Day) (bool, string) {
	return s.worked[d], ""
}

func matchLeave(s *scanState, d Day) (bool, string) {
	for _, g := range s.input.Leaves {
		if g.Covers(d) {
			return true, g.Type
		}
	}
	return false, ""
}

func matchHoliday(s *scanState, d Day) (bool, string) {
	// Fixed holidays; selectable ones require the employee's opt-in.
	for _, h := range s.rules.FixedHolidays {
		if !h.Matches(d) {
			continue
		}
		if h.Selectable && !s.input.Employee.OptedInto(h.Name) {
			continue
		}
		return true, h.Name
	}

	// Budget-gated recurring rules for the employee's category. On a match
	// the consumed counter advances before the next day is evaluated.
	for _, r := range s.rules.RecurringRulesFor(s.input.Employee.Category) {
		if MatchesRecurring(d, r, s.allowance, s.floatingConsumed) {
			s.floatingConsumed++
			return true, r.String()
		}
	}

	// Organization-level exact-date overrides.
	if s.rules.IsOverride(d) {
		return true, "organization holiday"
	}
	return false, ""
}

func matchWeekOff(s *scanState, d Day) (bool, string) {
	return s.rules.IsWeekOff(s.input.Employee.Category, d), ""
}

// =============================================================================
// AGGREGATION - Paid-day counts for payroll consumers
// =============================================================================

// Summarize counts classifications per category. Reporting consumers treat
// Worked, Leave, Holiday, and Week-Off as paid days.
func Summarize(days []DayClassification) map[DayCategory]int {
	counts := make(map[DayCategory]int)
	for _, d := range days {
		counts[d.Category]++
	}
	return counts
}
