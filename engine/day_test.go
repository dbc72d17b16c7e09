package engine_test

import (
	"testing"
	"time"

	"github.com/warp/temporal-engine/engine"
)

func TestWeekdayOccurrence(t *testing.T) {
	// GIVEN: days across March 2026 (March 1st is a Sunday)
	// THEN: the 1st-7th are occurrence 1, 8th-14th occurrence 2, etc.

	cases := []struct {
		day  int
		want int
	}{
		{1, 1}, {7, 1}, {8, 2}, {14, 2}, {15, 3}, {21, 3}, {22, 4}, {28, 4}, {29, 5}, {31, 5},
	}
	for _, c := range cases {
		d := engine.NewDay(2026, time.March, c.day)
		if got := d.WeekdayOccurrence(); got != c.want {
			t.Errorf("occurrence of 2026-03-%02d: got %d, want %d", c.day, got, c.want)
		}
	}
}

func TestDayOf_TruncatesTimeOfDay(t *testing.T) {
	ts := time.Date(2026, time.March, 2, 23, 59, 59, 0, time.UTC)
	if !engine.DayOf(ts).Equal(engine.NewDay(2026, time.March, 2)) {
		t.Errorf("expected timestamp to truncate to 2026-03-02, got %s", engine.DayOf(ts))
	}
}

func TestFirstOfMonth(t *testing.T) {
	d := engine.NewDay(2026, time.March, 17)
	if !d.FirstOfMonth().Equal(engine.NewDay(2026, time.March, 1)) {
		t.Errorf("expected 2026-03-01, got %s", d.FirstOfMonth())
	}
}

func TestEndOfMonth_LeapFebruary(t *testing.T) {
	if got := engine.EndOfMonth(2028, time.February); !got.Equal(engine.NewDay(2028, time.February, 29)) {
		t.Errorf("expected 2028-02-29, got %s", got)
	}
	if got := engine.EndOfMonth(2026, time.February); !got.Equal(engine.NewDay(2026, time.February, 28)) {
		t.Errorf("expected 2026-02-28, got %s", got)
	}
}

func TestAddDays_CrossesMonthBoundary(t *testing.T) {
	d := engine.NewDay(2026, time.January, 30).AddDays(3)
	if !d.Equal(engine.NewDay(2026, time.February, 2)) {
		t.Errorf("expected 2026-02-02, got %s", d)
	}
}

func TestDaysBetween(t *testing.T) {
	from := engine.NewDay(2026, time.January, 10)
	to := engine.NewDay(2026, time.January, 13)
	if got := engine.DaysBetween(from, to); got != 3 {
		t.Errorf("expected 3 days, got %d", got)
	}
}

func TestHoursBetween_ExactDecimal(t *testing.T) {
	// GIVEN: a 10.5 hour session
	// THEN: the decimal value is exactly 10.5, not 10.499999...
	from := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 2, 19, 30, 0, 0, time.UTC)
	if got := engine.HoursBetween(from, to).String(); got != "10.5" {
		t.Errorf("expected 10.5 hours, got %s", got)
	}
}
