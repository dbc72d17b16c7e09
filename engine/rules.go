/*
rules.go - Rule repository: holiday rules and role-category thresholds

PURPOSE:
  Read-only configuration that feeds the recurring-rule evaluator, the day
  classifier, and the overtime accrual engine: the fixed holiday list,
  recurring "Nth weekday" rules, exact-date overrides, and per-role-category
  thresholds.

CONSISTENCY CONTRACT:
  Rules are hot-reloadable, but a single classification call must see a
  single consistent rule set. RuleProvider.Rules() is therefore called once
  per ClassifyRange / overtime transition, never once per day.

MISSING CONFIGURATION:
  A category with no thresholds degrades silently: sessions for it are
  non-overtime-eligible and its recurring rules never match. Payroll report
  generation must never crash on a configuration gap.
*/
package engine

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// HOLIDAY RULES
// =============================================================================

// FixedHoliday recurs every year on the same month/day. Selectable holidays
// apply only to employees who opted in (e.g. regional festivals).
type FixedHoliday struct {
	Month      time.Month
	Day        int
	Name       string
	Selectable bool
}

// Matches reports whether the holiday falls on the given day (any year).
func (h FixedHoliday) Matches(d Day) bool {
	return d.Month() == h.Month && d.DayOfMonth() == h.Day
}

// RecurringHolidayRule matches the Nth occurrence of a weekday within each
// month (e.g. "3rd Saturday, office category"). Matching is gated by the
// category's monthly floating-leave allowance; see recurrence.go.
type RecurringHolidayRule struct {
	Weekday    time.Weekday
	Occurrence int // 1..5
	Category   RoleCategory
}

func (r RecurringHolidayRule) String() string {
	return fmt.Sprintf("%s #%d (%s)", r.Weekday, r.Occurrence, r.Category)
}

// =============================================================================
// ROLE THRESHOLDS
// =============================================================================

// RoleThresholds holds the per-category numeric limits.
//
// INVARIANT: StandardDailyHoursMax > 0 for any stored thresholds row.
type RoleThresholds struct {
	Category RoleCategory

	// StandardDailyHoursMax is the daily ceiling; session time beyond it
	// accrues as overtime.
	StandardDailyHoursMax Hours

	// MonthlyFloatingLeaveAllowance caps honored recurring-holiday matches
	// per employee per month. Zero is valid: the category simply has no
	// floating recurring holidays.
	MonthlyFloatingLeaveAllowance int

	// MonthlyTargetHours is the expected worked total, used by reporting
	// consumers. The engine itself does not enforce it.
	MonthlyTargetHours Hours
}

func (t RoleThresholds) Validate() error {
	if !t.StandardDailyHoursMax.IsPositive() {
		return fmt.Errorf("thresholds for %q: standard daily hours must be positive", t.Category)
	}
	if t.MonthlyFloatingLeaveAllowance < 0 {
		return fmt.Errorf("thresholds for %q: floating leave allowance cannot be negative", t.Category)
	}
	return nil
}

// =============================================================================
// RULE SET - One consistent snapshot of all configuration
// =============================================================================

// RuleSet is an immutable snapshot of the rule configuration. Engines fetch
// one per call and read only from it, so a hot reload mid-scan cannot
// produce a half-old, half-new classification.
type RuleSet struct {
	FixedHolidays  []FixedHoliday
	RecurringRules []RecurringHolidayRule

	// Overrides are organization-level exact-date holidays (one-off closures,
	// declared public holidays).
	Overrides []Day

	Thresholds map[RoleCategory]RoleThresholds

	// WeekOffDays lists additional week-off weekdays per category. Sunday is
	// the unconditional default for everyone and need not be listed.
	WeekOffDays map[RoleCategory][]time.Weekday
}

// ThresholdsFor returns the thresholds for a category, or false if none are
// configured. Callers degrade rather than fail on a missing entry.
func (rs RuleSet) ThresholdsFor(cat RoleCategory) (RoleThresholds, bool) {
	t, ok := rs.Thresholds[cat]
	return t, ok
}

// FloatingAllowance returns the category's monthly floating-leave allowance,
// zero when the category has no thresholds.
func (rs RuleSet) FloatingAllowance(cat RoleCategory) int {
	if t, ok := rs.Thresholds[cat]; ok {
		return t.MonthlyFloatingLeaveAllowance
	}
	return 0
}

// RecurringRulesFor returns the recurring rules that apply to a category.
func (rs RuleSet) RecurringRulesFor(cat RoleCategory) []RecurringHolidayRule {
	var rules []RecurringHolidayRule
	for _, r := range rs.RecurringRules {
		if r.Category == cat {
			rules = append(rules, r)
		}
	}
	return rules
}

// IsOverride reports whether the day is an organization-level holiday.
func (rs RuleSet) IsOverride(d Day) bool {
	for _, o := range rs.Overrides {
		if o.Equal(d) {
			return true
		}
	}
	return false
}

// IsWeekOff reports whether the weekday is a week-off for the category.
// Sunday is always a week-off regardless of configuration.
func (rs RuleSet) IsWeekOff(cat RoleCategory, d Day) bool {
	if d.Weekday() == time.Sunday {
		return true
	}
	for _, wd := range rs.WeekOffDays[cat] {
		if wd == d.Weekday() {
			return true
		}
	}
	return false
}

// Validate checks the invariants of every thresholds row and recurring rule.
func (rs RuleSet) Validate() error {
	for _, t := range rs.Thresholds {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, r := range rs.RecurringRules {
		if r.Occurrence < 1 || r.Occurrence > 5 {
			return fmt.Errorf("recurring rule %s: occurrence must be 1..5", r)
		}
	}
	return nil
}

// =============================================================================
// RULE PROVIDER - Hot-reloadable configuration source
// =============================================================================

// RuleProvider supplies rule-set snapshots. Implementations may reload from
// storage or a config file between calls; within one call the returned set
// is immutable.
type RuleProvider interface {
	Rules(ctx context.Context) (RuleSet, error)
}

// StaticRules is a RuleProvider over a fixed rule set, for tests and for
// deployments that load rules once at startup.
type StaticRules struct {
	Set RuleSet
}

func (s StaticRules) Rules(ctx context.Context) (RuleSet, error) {
	return s.Set, nil
}
