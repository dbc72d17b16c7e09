/*
Package rulebook converts JSON rule definitions into an engine.RuleSet.

PURPOSE:
  Rule configuration (holidays, thresholds, week-off days) changes without
  code changes - HR edits a JSON document, and this package turns it into
  the engine's typed rule set with validation and sensible defaults.

JSON SCHEMA:
  {
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
  }

VALIDATION:
  Parse rejects thresholds with a non-positive daily ceiling, recurring
  rules with an occurrence outside 1..5, and unparseable weekday or date
  strings. A valid rulebook with gaps (a category with no thresholds) is
  fine: the engine degrades per category at evaluation time.

SEE ALSO:
  - engine/rules.go: RuleSet and RuleProvider
  - cmd/server/main.go: loads the rulebook file at startup
*/
package rulebook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/warp/temporal-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type RulebookJSON struct {
	FixedHolidays  []FixedHolidayJSON  `json:"fixed_holidays,omitempty"`
	RecurringRules []RecurringRuleJSON `json:"recurring_rules,omitempty"`
	Overrides      []string            `json:"overrides,omitempty"`
	Thresholds     []ThresholdsJSON    `json:"thresholds,omitempty"`
	WeekOffDays    map[string][]string `json:"week_off_days,omitempty"`
}

type FixedHolidayJSON struct {
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Name       string `json:"name"`
	Selectable bool   `json:"selectable,omitempty"`
}

type RecurringRuleJSON struct {
	Weekday    string `json:"weekday"`
	Occurrence int    `json:"occurrence"`
	Category   string `json:"category"`
}

type ThresholdsJSON struct {
	Category                      string  `json:"category"`
	StandardDailyHoursMax         float64 `json:"standard_daily_hours_max"`
	MonthlyFloatingLeaveAllowance int     `json:"monthly_floating_leave_allowance"`
	MonthlyTargetHours            float64 `json:"monthly_target_hours,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// Parse converts a JSON rulebook into a validated rule set.
func Parse(data []byte) (engine.RuleSet, error) {
	var doc RulebookJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return engine.RuleSet{}, fmt.Errorf("invalid rulebook JSON: %w", err)
	}
	return FromJSON(doc)
}

// LoadFile reads and parses a rulebook file.
func LoadFile(path string) (engine.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.RuleSet{}, fmt.Errorf("read rulebook: %w", err)
	}
	return Parse(data)
}

// FromJSON converts the JSON document into the engine's typed rule set.
func FromJSON(doc RulebookJSON) (engine.RuleSet, error) {
	rs := engine.RuleSet{
		Thresholds:  make(map[engine.RoleCategory]engine.RoleThresholds),
		WeekOffDays: make(map[engine.RoleCategory][]time.Weekday),
	}

	for _, h := range doc.FixedHolidays {
		if h.Month < 1 || h.Month > 12 || h.Day < 1 || h.Day > 31 {
			return engine.RuleSet{}, fmt.Errorf("fixed holiday %q: invalid month/day %d/%d", h.Name, h.Month, h.Day)
		}
		rs.FixedHolidays = append(rs.FixedHolidays, engine.FixedHoliday{
			Month:      time.Month(h.Month),
			Day:        h.Day,
			Name:       h.Name,
			Selectable: h.Selectable,
		})
	}

	for _, r := range doc.RecurringRules {
		wd, err := parseWeekday(r.Weekday)
		if err != nil {
			return engine.RuleSet{}, err
		}
		rs.RecurringRules = append(rs.RecurringRules, engine.RecurringHolidayRule{
			Weekday:    wd,
			Occurrence: r.Occurrence,
			Category:   engine.RoleCategory(r.Category),
		})
	}

	for _, o := range doc.Overrides {
		t, err := time.Parse("2006-01-02", o)
		if err != nil {
			return engine.RuleSet{}, fmt.Errorf("override %q: expected YYYY-MM-DD", o)
		}
		rs.Overrides = append(rs.Overrides, engine.DayOf(t))
	}

	for _, th := range doc.Thresholds {
		cat := engine.RoleCategory(th.Category)
		rs.Thresholds[cat] = engine.RoleThresholds{
			Category:                      cat,
			StandardDailyHoursMax:         engine.NewHours(th.StandardDailyHoursMax),
			MonthlyFloatingLeaveAllowance: th.MonthlyFloatingLeaveAllowance,
			MonthlyTargetHours:            engine.NewHours(th.MonthlyTargetHours),
		}
	}

	for cat, names := range doc.WeekOffDays {
		for _, name := range names {
			wd, err := parseWeekday(name)
			if err != nil {
				return engine.RuleSet{}, err
			}
			rs.WeekOffDays[engine.RoleCategory(cat)] = append(rs.WeekOffDays[engine.RoleCategory(cat)], wd)
		}
	}

	if err := rs.Validate(); err != nil {
		return engine.RuleSet{}, err
	}
	return rs, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	if wd, ok := weekdays[strings.ToLower(s)]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// =============================================================================
// HOT-RELOADABLE PROVIDER
// =============================================================================

// Provider is an engine.RuleProvider whose rule set can be swapped at
// runtime (e.g. by an admin endpoint). Every swap replaces the whole
// snapshot, so in-flight calls keep the set they already fetched.
type Provider struct {
	mu  sync.RWMutex
	set engine.RuleSet
}

func NewProvider(set engine.RuleSet) *Provider {
	return &Provider{set: set}
}

var _ engine.RuleProvider = (*Provider)(nil)

func (p *Provider) Rules(_ context.Context) (engine.RuleSet, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.set, nil
}

// Update swaps in a new rule set.
func (p *Provider) Update(set engine.RuleSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set = set
}
