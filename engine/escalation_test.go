package engine_test

import (
	"testing"
	"time"

	"github.com/warp/temporal-engine/engine"
)

func intp(n int) *int { return &n }

func dayp(y int, m time.Month, d int) *engine.Day {
	day := engine.NewDay(y, m, d)
	return &day
}

func chainedTask() engine.Task {
	return engine.Task{
		ID:          "task-1",
		BaseDueDate: dayp(2026, time.January, 10),
		Stage:       engine.StageNone,
		Status:      engine.TaskTodo,
		Stage1Days:  intp(3),
		Stage2Days:  intp(2),
		Stage3Days:  intp(4),
	}
}

func TestNextDueDate_StageAccumulation(t *testing.T) {
	// GIVEN: base 2026-01-10 with stage durations 3, 2, 4
	// THEN: each stage accumulates every prior duration from the base

	today := engine.NewDay(2026, time.January, 1)
	cases := []struct {
		stage engine.EscalationStage
		want  engine.Day
	}{
		{engine.StageNone, engine.NewDay(2026, time.January, 13)},
		{engine.Stage1, engine.NewDay(2026, time.January, 15)},
		{engine.Stage2, engine.NewDay(2026, time.January, 19)},
	}

	for _, c := range cases {
		task := chainedTask()
		task.Stage = c.stage
		due := engine.NextDueDate(task, today)
		if due.Date == nil {
			t.Fatalf("stage %s: expected a due date", c.stage)
		}
		if !due.Date.Equal(c.want) {
			t.Errorf("stage %s: expected %s, got %s", c.stage, c.want, due.Date)
		}
		if due.Overdue {
			t.Errorf("stage %s: not overdue as of %s", c.stage, today)
		}
	}
}

func TestNextDueDate_Overdue(t *testing.T) {
	// GIVEN: stage None, due 2026-01-13
	// WHEN: today is 2026-01-15
	// THEN: the task is overdue

	due := engine.NextDueDate(chainedTask(), engine.NewDay(2026, time.January, 15))
	if !due.Overdue {
		t.Error("expected overdue")
	}
	if !due.Date.Equal(engine.NewDay(2026, time.January, 13)) {
		t.Errorf("expected 2026-01-13, got %s", due.Date)
	}
}

func TestNextDueDate_DueTodayIsNotOverdue(t *testing.T) {
	// Day-granularity comparison: due today means not yet overdue.
	due := engine.NextDueDate(chainedTask(), engine.NewDay(2026, time.January, 13))
	if due.Overdue {
		t.Error("a task due today is not overdue")
	}
}

func TestNextDueDate_MissingDurationFallsBackToBase(t *testing.T) {
	// GIVEN: stage Stage1 but no Stage2Days configured
	// THEN: the due date falls back to the base date, never an error

	task := chainedTask()
	task.Stage = engine.Stage1
	task.Stage2Days = nil

	due := engine.NextDueDate(task, engine.NewDay(2026, time.January, 1))
	if due.Date == nil || !due.Date.Equal(engine.NewDay(2026, time.January, 10)) {
		t.Errorf("expected fallback to base 2026-01-10, got %s", engine.FormatDueDate(due))
	}
}

func TestNextDueDate_NotifiedIsTerminal(t *testing.T) {
	task := chainedTask()
	task.Stage = engine.StageNotified

	due := engine.NextDueDate(task, engine.NewDay(2026, time.February, 1))
	if due.Date != nil {
		t.Errorf("notified stage yields no further date, got %s", due.Date)
	}
	if due.Overdue {
		t.Error("notified stage is never overdue")
	}
	if got := engine.FormatDueDate(due); got != "none" {
		t.Errorf("expected \"none\", got %q", got)
	}
}

func TestNextDueDate_DoneIsNeverOverdue(t *testing.T) {
	task := chainedTask()
	task.Status = engine.TaskDone

	due := engine.NextDueDate(task, engine.NewDay(2026, time.June, 1))
	if due.Overdue {
		t.Error("a done task is never overdue")
	}
}

func TestNextDueDate_NoBaseDate(t *testing.T) {
	task := chainedTask()
	task.BaseDueDate = nil

	due := engine.NextDueDate(task, engine.NewDay(2026, time.June, 1))
	if due.Date != nil || due.Overdue {
		t.Errorf("no base date: expected no due date and not overdue, got %s overdue=%v",
			engine.FormatDueDate(due), due.Overdue)
	}
}
