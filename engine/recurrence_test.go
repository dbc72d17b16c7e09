package engine_test

import (
	"testing"
	"time"

	"github.com/warp/temporal-engine/engine"
)

func thirdSaturday() engine.RecurringHolidayRule {
	return engine.RecurringHolidayRule{
		Weekday:    time.Saturday,
		Occurrence: 3,
		Category:   engine.CategoryOffice,
	}
}

func TestMatchesRecurring_ExactlyOneMatchPerMonth(t *testing.T) {
	// GIVEN: a "3rd Saturday" rule with budget available
	// WHEN: evaluating every day of March 2026
	// THEN: exactly one day matches, and it is Saturday the 21st

	rule := thirdSaturday()
	var matches []engine.Day
	for d := engine.NewDay(2026, time.March, 1); d.BeforeOrEqual(engine.NewDay(2026, time.March, 31)); d = d.AddDays(1) {
		if engine.MatchesRecurring(d, rule, 1, 0) {
			matches = append(matches, d)
		}
	}

	if len(matches) != 1 {
		t.Fatalf("expected exactly 1 match in March 2026, got %d", len(matches))
	}
	if !matches[0].Equal(engine.NewDay(2026, time.March, 21)) {
		t.Errorf("expected 2026-03-21, got %s", matches[0])
	}
}

func TestMatchesRecurring_BudgetExhausted(t *testing.T) {
	// GIVEN: the budget for the month is already consumed
	// WHEN: the rule's day arrives
	// THEN: the rule does not match

	day := engine.NewDay(2026, time.March, 21)
	if engine.MatchesRecurring(day, thirdSaturday(), 1, 1) {
		t.Error("expected no match with consumed == allowance")
	}
}

func TestMatchesRecurring_ZeroAllowanceNeverMatches(t *testing.T) {
	day := engine.NewDay(2026, time.March, 21)
	if engine.MatchesRecurring(day, thirdSaturday(), 0, 0) {
		t.Error("expected no match with zero allowance")
	}
}

func TestMatchesRecurring_WrongWeekdayOrOccurrence(t *testing.T) {
	rule := thirdSaturday()

	// 2026-03-14 is the 2nd Saturday.
	if engine.MatchesRecurring(engine.NewDay(2026, time.March, 14), rule, 1, 0) {
		t.Error("2nd Saturday should not match a 3rd-Saturday rule")
	}
	// 2026-03-20 is a Friday in the 3rd occurrence window.
	if engine.MatchesRecurring(engine.NewDay(2026, time.March, 20), rule, 1, 0) {
		t.Error("Friday should not match a Saturday rule")
	}
}

func TestMatchesRecurring_FifthOccurrenceOnlyInLongMonths(t *testing.T) {
	// GIVEN: a "5th Sunday" rule
	// THEN: March 2026 has one (the 29th); February 2026 has none

	rule := engine.RecurringHolidayRule{Weekday: time.Sunday, Occurrence: 5, Category: engine.CategoryOffice}

	if !engine.MatchesRecurring(engine.NewDay(2026, time.March, 29), rule, 1, 0) {
		t.Error("expected 2026-03-29 to match a 5th-Sunday rule")
	}
	for d := engine.NewDay(2026, time.February, 1); d.BeforeOrEqual(engine.NewDay(2026, time.February, 28)); d = d.AddDays(1) {
		if engine.MatchesRecurring(d, rule, 1, 0) {
			t.Errorf("February 2026 has no 5th Sunday, but %s matched", d)
		}
	}
}
