package engine

import (
	"time"
)

// =============================================================================
// DAY - Calendar day abstraction (classification and due dates are day-based)
// =============================================================================

// Day is a calendar day, normalized to midnight UTC. All classification and
// due-date arithmetic happens at day granularity; time-of-day is ignored.
type Day struct {
	Time time.Time
}

// Constructors
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func Today() Day {
	return DayOf(time.Now())
}

// Comparison
func (d Day) Before(other Day) bool        { return d.normalize().Before(other.normalize()) }
func (d Day) Equal(other Day) bool         { return d.normalize().Equal(other.normalize()) }
func (d Day) After(other Day) bool         { return d.normalize().After(other.normalize()) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }

func (d Day) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Day) AddDays(n int) Day   { return DayOf(d.Time.AddDate(0, 0, n)) }
func (d Day) AddMonths(n int) Day { return DayOf(d.Time.AddDate(0, n, 0)) }

// Properties
func (d Day) Year() int             { return d.Time.Year() }
func (d Day) Month() time.Month     { return d.Time.Month() }
func (d Day) DayOfMonth() int       { return d.Time.Day() }
func (d Day) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Day) IsZero() bool          { return d.Time.IsZero() }

// SameMonth reports whether both days fall in the same calendar month.
func (d Day) SameMonth(other Day) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// WeekdayOccurrence returns which occurrence of its weekday this day is
// within its month, counting matching weekdays from the 1st up to and
// including the day itself. The 1st-7th are occurrence 1, the 8th-14th
// occurrence 2, and so on.
func (d Day) WeekdayOccurrence() int {
	return (d.DayOfMonth()-1)/7 + 1
}

func (d Day) String() string {
	return d.Time.Format("2006-01-02")
}

// =============================================================================
// MONTH HELPERS
// =============================================================================

func StartOfMonth(year int, month time.Month) Day { return NewDay(year, month, 1) }

func EndOfMonth(year int, month time.Month) Day {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return DayOf(t)
}

// FirstOfMonth returns the first day of the month containing d.
func (d Day) FirstOfMonth() Day { return StartOfMonth(d.Year(), d.Month()) }

func DaysBetween(from, to Day) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
