/*
scheduler.go - Background month-rollover and escalation scans

PURPOSE:
  Runs two periodic jobs in one background goroutine:

  1. Month rollover: at the first check after a calendar month boundary,
     zeroes every employee's month-to-date overtime counter. Banked hours
     are never touched.
  2. Escalation scan: recomputes the next actionable due date for every
     open task and raises an EscalationDue notification for each task that
     is overdue as of today.

DESIGN:
  - Single goroutine with a configurable check interval
  - The rollover remembers the last month it reset, so restarting the
    process mid-month does not double-reset
  - Scans are read-mostly; the only write is the month-to-date reset

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewScheduler(store, eng, notifier)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - engine/overtime.go: ResetMonthToDate semantics
  - engine/escalation.go: NextDueDate
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/temporal-engine/engine"
	"github.com/warp/temporal-engine/store/sqlite"
)

// Scheduler drives the month rollover and the escalation due-date scan.
type Scheduler struct {
	Store         *sqlite.Store
	Engine        *engine.OvertimeEngine
	Notifier      engine.Notifier
	CheckInterval time.Duration
	Enabled       bool

	ticker    *time.Ticker
	stop      chan bool
	wg        sync.WaitGroup
	mu        sync.Mutex
	lastReset engine.Day // first of the last month that was reset

	// notified maps each task to the due date it was last notified for, so
	// a still-overdue task is not re-notified every tick. A stage advance
	// changes the computed date and re-arms the notification.
	notified map[engine.TaskID]engine.Day
}

// NewScheduler creates a new scheduler.
func NewScheduler(store *sqlite.Store, eng *engine.OvertimeEngine, notifier engine.Notifier) *Scheduler {
	if notifier == nil {
		notifier = engine.NopNotifier{}
	}
	return &Scheduler{
		Store:         store,
		Engine:        eng,
		Notifier:      notifier,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
		// Assume the current month was already handled; a fresh process
		// must not reset balances accrued earlier this month.
		lastReset: engine.Today().FirstOfMonth(),
		notified:  make(map[engine.TaskID]engine.Day),
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	log.Printf("[Scheduler] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.checkAndProcess()

	for {
		select {
		case <-s.ticker.C:
			s.checkAndProcess()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) checkAndProcess() {
	ctx := context.Background()
	today := engine.Today()

	s.rolloverIfNewMonth(ctx, today)
	s.scanEscalations(ctx, today)
}

// rolloverIfNewMonth resets month-to-date counters once per calendar month.
func (s *Scheduler) rolloverIfNewMonth(ctx context.Context, today engine.Day) {
	month := today.FirstOfMonth()

	s.mu.Lock()
	alreadyDone := month.Equal(s.lastReset)
	s.mu.Unlock()
	if alreadyDone {
		return
	}

	if err := s.Engine.ResetMonthToDate(ctx); err != nil {
		log.Printf("[Scheduler] Error resetting month-to-date: %v", err)
		return
	}

	s.mu.Lock()
	s.lastReset = month
	s.mu.Unlock()
	log.Printf("[Scheduler] Month-to-date counters reset for %s", month)
}

// scanEscalations raises a notification for every overdue open task.
func (s *Scheduler) scanEscalations(ctx context.Context, today engine.Day) {
	tasks, err := s.Store.OpenTasks(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing open tasks: %v", err)
		return
	}

	notifiedCount := 0
	skippedCount := 0
	for _, t := range tasks {
		due := engine.NextDueDate(t, today)
		if due.Date == nil || !due.Overdue {
			continue
		}

		s.mu.Lock()
		last, seen := s.notified[t.ID]
		if seen && last.Equal(*due.Date) {
			s.mu.Unlock()
			skippedCount++
			continue
		}
		s.notified[t.ID] = *due.Date
		s.mu.Unlock()

		s.Notifier.EscalationDue(ctx, t.ID, *due.Date, true)
		notifiedCount++
	}

	if notifiedCount > 0 || skippedCount > 0 {
		log.Printf("[Scheduler] Escalation scan: %d notified, %d skipped (already notified) of %d open tasks",
			notifiedCount, skippedCount, len(tasks))
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (s *Scheduler) RunNow() {
	s.checkAndProcess()
}
