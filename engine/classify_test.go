package engine_test

import (
	"testing"
	"time"

	"github.com/warp/temporal-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func officeRules(allowance int) engine.RuleSet {
	return engine.RuleSet{
		RecurringRules: []engine.RecurringHolidayRule{
			{Weekday: time.Saturday, Occurrence: 3, Category: engine.CategoryOffice},
		},
		Thresholds: map[engine.RoleCategory]engine.RoleThresholds{
			engine.CategoryOffice: {
				Category:                      engine.CategoryOffice,
				StandardDailyHoursMax:         engine.HoursFromInt(8),
				MonthlyFloatingLeaveAllowance: allowance,
			},
		},
	}
}

func officeEmployee() engine.Employee {
	return engine.Employee{ID: "emp-1", Name: "Asha", Category: engine.CategoryOffice}
}

func checkIn(emp engine.EmployeeID, y int, m time.Month, d, hour int) engine.AttendanceEvent {
	return engine.AttendanceEvent{
		ID:         engine.EventID(engine.NewDay(y, m, d).String() + "-in"),
		EmployeeID: emp,
		Timestamp:  time.Date(y, m, d, hour, 0, 0, 0, time.UTC),
		Kind:       engine.KindCheckIn,
	}
}

func approvedLeave(emp engine.EmployeeID, start, end engine.Day) engine.LeaveGrant {
	return engine.LeaveGrant{
		ID:         "leave-" + start.String(),
		EmployeeID: emp,
		Start:      start,
		End:        end,
		Type:       "casual",
		Status:     engine.LeaveApproved,
	}
}

func categoryOf(days []engine.DayClassification, target engine.Day) engine.DayCategory {
	for _, d := range days {
		if d.Date.Equal(target) {
			return d.Category
		}
	}
	return ""
}

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestClassifyRange_FullMonth(t *testing.T) {
	// GIVEN: one check-in (Mon Mar 2), approved leave Mar 3-5, a 3rd-Saturday
	//        recurring holiday with allowance 1
	// WHEN: classifying all of March 2026 (March 1st is a Sunday)
	// THEN: Worked=1, Leave=3, Holiday=1 (the 21st), Week-Off=5 Sundays,
	//       Unpaid covers the remaining 21 days

	emp := officeEmployee()
	classifier := engine.NewClassifier(officeRules(1))

	input := engine.ClassifyInput{
		Employee: emp,
		Events:   []engine.AttendanceEvent{checkIn(emp.ID, 2026, time.March, 2, 9)},
		Leaves: []engine.LeaveGrant{
			approvedLeave(emp.ID, engine.NewDay(2026, time.March, 3), engine.NewDay(2026, time.March, 5)),
		},
	}

	days, err := classifier.ClassifyRange(input, engine.NewDay(2026, time.March, 1), engine.NewDay(2026, time.March, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 31 {
		t.Fatalf("expected 31 classifications, got %d", len(days))
	}

	if got := categoryOf(days, engine.NewDay(2026, time.March, 2)); got != engine.DayWorked {
		t.Errorf("Mar 2: expected worked, got %s", got)
	}
	for d := 3; d <= 5; d++ {
		if got := categoryOf(days, engine.NewDay(2026, time.March, d)); got != engine.DayLeave {
			t.Errorf("Mar %d: expected leave, got %s", d, got)
		}
	}
	if got := categoryOf(days, engine.NewDay(2026, time.March, 21)); got != engine.DayHoliday {
		t.Errorf("Mar 21: expected holiday, got %s", got)
	}
	for _, sunday := range []int{1, 8, 15, 22, 29} {
		if got := categoryOf(days, engine.NewDay(2026, time.March, sunday)); got != engine.DayWeekOff {
			t.Errorf("Mar %d: expected week_off, got %s", sunday, got)
		}
	}

	summary := engine.Summarize(days)
	want := map[engine.DayCategory]int{
		engine.DayWorked:  1,
		engine.DayLeave:   3,
		engine.DayHoliday: 1,
		engine.DayWeekOff: 5,
		engine.DayUnpaid:  21,
	}
	for cat, n := range want {
		if summary[cat] != n {
			t.Errorf("summary[%s]: expected %d, got %d", cat, n, summary[cat])
		}
	}
}

func TestClassifyRange_WorkedBeatsLeave(t *testing.T) {
	// GIVEN: a day carrying both a check-in and an approved leave grant
	// THEN: the day is Worked; priority order wins over the grant

	emp := officeEmployee()
	classifier := engine.NewClassifier(officeRules(1))

	day := engine.NewDay(2026, time.March, 4)
	input := engine.ClassifyInput{
		Employee: emp,
		Events:   []engine.AttendanceEvent{checkIn(emp.ID, 2026, time.March, 4, 9)},
		Leaves:   []engine.LeaveGrant{approvedLeave(emp.ID, day, day)},
	}

	days, err := classifier.ClassifyRange(input, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Category != engine.DayWorked {
		t.Errorf("expected worked, got %s", days[0].Category)
	}
}

func TestClassifyRange_CheckInAloneIsWorked(t *testing.T) {
	// GIVEN: a check-in with no matching check-out
	// THEN: the day is still Worked; a forgotten checkout never costs the day

	emp := officeEmployee()
	classifier := engine.NewClassifier(officeRules(1))

	day := engine.NewDay(2026, time.March, 2)
	days, err := classifier.ClassifyRange(engine.ClassifyInput{
		Employee: emp,
		Events:   []engine.AttendanceEvent{checkIn(emp.ID, 2026, time.March, 2, 9)},
	}, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Category != engine.DayWorked {
		t.Errorf("expected worked, got %s", days[0].Category)
	}
}

func TestClassifyRange_PendingLeaveDoesNotCount(t *testing.T) {
	emp := officeEmployee()
	classifier := engine.NewClassifier(officeRules(1))

	day := engine.NewDay(2026, time.March, 4)
	grant := approvedLeave(emp.ID, day, day)
	grant.Status = engine.LeavePending

	days, err := classifier.ClassifyRange(engine.ClassifyInput{
		Employee: emp,
		Leaves:   []engine.LeaveGrant{grant},
	}, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Category != engine.DayUnpaid {
		t.Errorf("expected unpaid for pending leave, got %s", days[0].Category)
	}
}

func TestClassifyRange_FloatingBudgetExhaustion(t *testing.T) {
	// GIVEN: two recurring Saturday rules (1st and 3rd) but allowance 1
	// WHEN: classifying March 2026
	// THEN: the 1st Saturday consumes the budget; the 3rd is not a holiday

	rules := officeRules(1)
	rules.RecurringRules = []engine.RecurringHolidayRule{
		{Weekday: time.Saturday, Occurrence: 1, Category: engine.CategoryOffice},
		{Weekday: time.Saturday, Occurrence: 3, Category: engine.CategoryOffice},
	}
	classifier := engine.NewClassifier(rules)

	days, err := classifier.ClassifyRange(engine.ClassifyInput{Employee: officeEmployee()},
		engine.NewDay(2026, time.March, 1), engine.NewDay(2026, time.March, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := categoryOf(days, engine.NewDay(2026, time.March, 7)); got != engine.DayHoliday {
		t.Errorf("Mar 7 (1st Saturday): expected holiday, got %s", got)
	}
	if got := categoryOf(days, engine.NewDay(2026, time.March, 21)); got != engine.DayUnpaid {
		t.Errorf("Mar 21 (3rd Saturday, budget spent): expected unpaid, got %s", got)
	}
}

func TestClassifyRange_BudgetResetsAcrossMonths(t *testing.T) {
	// GIVEN: a 3rd-Saturday rule, allowance 1, scanning March through April
	// THEN: both months get their holiday; the budget is per month

	classifier := engine.NewClassifier(officeRules(1))

	days, err := classifier.ClassifyRange(engine.ClassifyInput{Employee: officeEmployee()},
		engine.NewDay(2026, time.March, 1), engine.NewDay(2026, time.April, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := categoryOf(days, engine.NewDay(2026, time.March, 21)); got != engine.DayHoliday {
		t.Errorf("Mar 21: expected holiday, got %s", got)
	}
	// 3rd Saturday of April 2026 is the 18th.
	if got := categoryOf(days, engine.NewDay(2026, time.April, 18)); got != engine.DayHoliday {
		t.Errorf("Apr 18: expected holiday, got %s", got)
	}
}

func TestClassifyRange_SelectableHolidayRequiresOptIn(t *testing.T) {
	// GIVEN: a selectable fixed holiday
	// THEN: only employees who opted in get the holiday

	rules := officeRules(0)
	rules.FixedHolidays = []engine.FixedHoliday{
		{Month: time.March, Day: 17, Name: "Founders Day", Selectable: true},
	}
	classifier := engine.NewClassifier(rules)
	day := engine.NewDay(2026, time.March, 17)

	optedOut := officeEmployee()
	days, err := classifier.ClassifyRange(engine.ClassifyInput{Employee: optedOut}, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Category != engine.DayUnpaid {
		t.Errorf("without opt-in: expected unpaid, got %s", days[0].Category)
	}

	optedIn := officeEmployee()
	optedIn.OptedHolidays = []string{"Founders Day"}
	days, err = classifier.ClassifyRange(engine.ClassifyInput{Employee: optedIn}, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Category != engine.DayHoliday {
		t.Errorf("with opt-in: expected holiday, got %s", days[0].Category)
	}
}

func TestClassifyRange_OverrideHoliday(t *testing.T) {
	rules := officeRules(0)
	day := engine.NewDay(2026, time.March, 10)
	rules.Overrides = []engine.Day{day}
	classifier := engine.NewClassifier(rules)

	days, err := classifier.ClassifyRange(engine.ClassifyInput{Employee: officeEmployee()}, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days[0].Category != engine.DayHoliday {
		t.Errorf("expected holiday on override date, got %s", days[0].Category)
	}
}

func TestClassifyRange_InvalidRange(t *testing.T) {
	classifier := engine.NewClassifier(officeRules(1))

	_, err := classifier.ClassifyRange(engine.ClassifyInput{Employee: officeEmployee()},
		engine.NewDay(2026, time.March, 10), engine.NewDay(2026, time.March, 1))
	if !engine.IsClientError(err) {
		t.Fatalf("expected a client error for end-before-start, got %v", err)
	}
}

func TestClassifyRange_ExactlyOneCategoryPerDay(t *testing.T) {
	// GIVEN: a month where several rules overlap
	// THEN: every day appears exactly once, in order, with one category

	emp := officeEmployee()
	classifier := engine.NewClassifier(officeRules(1))

	start := engine.NewDay(2026, time.March, 1)
	end := engine.NewDay(2026, time.March, 31)
	days, err := classifier.ClassifyRange(engine.ClassifyInput{Employee: emp}, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := start
	for _, d := range days {
		if !d.Date.Equal(expected) {
			t.Fatalf("expected %s next, got %s", expected, d.Date)
		}
		expected = expected.AddDays(1)
	}
	if !expected.Equal(end.AddDays(1)) {
		t.Errorf("scan stopped at %s, expected to cover through %s", expected.AddDays(-1), end)
	}
}
