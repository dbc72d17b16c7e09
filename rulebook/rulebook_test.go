package rulebook_test

import (
	"context"
	"testing"
	"time"

	"github.com/warp/temporal-engine/engine"
	"github.com/warp/temporal-engine/rulebook"
)

const sampleRulebook = `{
	"fixed_holidays": [
		{"month": 1, "day": 26, "name": "Republic Day"},
		{"month": 11, "day": 1, "name": "Founders Day", "selectable": true}
	],
	"recurring_rules": [
		{"weekday": "saturday", "occurrence": 3, "category": "office"}
	],
	"overrides": ["2026-04-14"],
	"thresholds": [
		{
			"category": "office",
			"standard_daily_hours_max": 8,
			"monthly_floating_leave_allowance": 1,
			"monthly_target_hours": 160
		}
	],
	"week_off_days": {"office": ["saturday"]}
}`

func TestParse_SampleRulebook(t *testing.T) {
	set, err := rulebook.Parse([]byte(sampleRulebook))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(set.FixedHolidays) != 2 {
		t.Fatalf("expected 2 fixed holidays, got %d", len(set.FixedHolidays))
	}
	if set.FixedHolidays[0].Month != time.January || set.FixedHolidays[0].Day != 26 {
		t.Errorf("unexpected first holiday: %+v", set.FixedHolidays[0])
	}
	if !set.FixedHolidays[1].Selectable {
		t.Error("Founders Day should be selectable")
	}

	if len(set.RecurringRules) != 1 {
		t.Fatalf("expected 1 recurring rule, got %d", len(set.RecurringRules))
	}
	rule := set.RecurringRules[0]
	if rule.Weekday != time.Saturday || rule.Occurrence != 3 || rule.Category != engine.CategoryOffice {
		t.Errorf("unexpected recurring rule: %+v", rule)
	}

	if !set.IsOverride(engine.NewDay(2026, time.April, 14)) {
		t.Error("2026-04-14 should be an override holiday")
	}

	thresholds, ok := set.ThresholdsFor(engine.CategoryOffice)
	if !ok {
		t.Fatal("expected office thresholds")
	}
	if got := thresholds.StandardDailyHoursMax.String(); got != "8" {
		t.Errorf("daily ceiling: expected 8, got %s", got)
	}
	if thresholds.MonthlyFloatingLeaveAllowance != 1 {
		t.Errorf("allowance: expected 1, got %d", thresholds.MonthlyFloatingLeaveAllowance)
	}

	// Saturday configured, Sunday implicit.
	if !set.IsWeekOff(engine.CategoryOffice, engine.NewDay(2026, time.March, 14)) {
		t.Error("Saturday should be a week-off for office")
	}
	if !set.IsWeekOff(engine.CategoryOffice, engine.NewDay(2026, time.March, 15)) {
		t.Error("Sunday is always a week-off")
	}
}

func TestParse_Rejections(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"bad JSON", `{`},
		{"bad weekday", `{"recurring_rules": [{"weekday": "caturday", "occurrence": 3, "category": "office"}]}`},
		{"occurrence out of range", `{"recurring_rules": [{"weekday": "saturday", "occurrence": 6, "category": "office"}]}`},
		{"bad override date", `{"overrides": ["14-04-2026"]}`},
		{"bad fixed holiday", `{"fixed_holidays": [{"month": 13, "day": 1, "name": "Nope"}]}`},
		{"non-positive ceiling", `{"thresholds": [{"category": "office", "standard_daily_hours_max": 0}]}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := rulebook.Parse([]byte(c.doc)); err == nil {
				t.Errorf("expected parse to fail")
			}
		})
	}
}

func TestParse_GapsAreValid(t *testing.T) {
	// A category with no thresholds is fine; the engine degrades at
	// evaluation time.
	set, err := rulebook.Parse([]byte(`{"thresholds": [{"category": "office", "standard_daily_hours_max": 8}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := set.ThresholdsFor(engine.CategorySite); ok {
		t.Error("site should have no thresholds")
	}
	if set.FloatingAllowance(engine.CategorySite) != 0 {
		t.Error("missing category degrades to zero allowance")
	}
}

func TestProvider_HotSwap(t *testing.T) {
	// GIVEN: a provider serving an empty set
	// WHEN: updating with a parsed rulebook
	// THEN: subsequent calls see the new snapshot

	ctx := context.Background()
	provider := rulebook.NewProvider(engine.RuleSet{})

	before, err := provider.Rules(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(before.FixedHolidays) != 0 {
		t.Fatal("expected an empty initial set")
	}

	set, err := rulebook.Parse([]byte(sampleRulebook))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	provider.Update(set)

	after, err := provider.Rules(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after.FixedHolidays) != 2 {
		t.Errorf("expected the swapped set, got %d fixed holidays", len(after.FixedHolidays))
	}
}
