// Package store provides an in-memory engine.Store implementation for
// testing and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/temporal-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu          sync.RWMutex
	events      map[engine.EmployeeID][]engine.AttendanceEvent
	idempotency map[string]bool
	leaves      map[engine.EmployeeID][]engine.LeaveGrant
	balances    map[engine.EmployeeID]engine.OvertimeBalance
	compOffs    map[engine.EmployeeID][]engine.CompOffUnit
	tasks       map[engine.TaskID]engine.Task
	employees   map[engine.EmployeeID]engine.Employee
}

func NewMemory() *Memory {
	return &Memory{
		events:      make(map[engine.EmployeeID][]engine.AttendanceEvent),
		idempotency: make(map[string]bool),
		leaves:      make(map[engine.EmployeeID][]engine.LeaveGrant),
		balances:    make(map[engine.EmployeeID]engine.OvertimeBalance),
		compOffs:    make(map[engine.EmployeeID][]engine.CompOffUnit),
		tasks:       make(map[engine.TaskID]engine.Task),
		employees:   make(map[engine.EmployeeID]engine.Employee),
	}
}

var _ engine.TxStore = (*Memory)(nil)

// =============================================================================
// EVENTS (append-only)
// =============================================================================

func (m *Memory) AppendEvent(_ context.Context, ev engine.AttendanceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(ev)
}

func (m *Memory) appendLocked(ev engine.AttendanceEvent) error {
	if ev.IdempotencyKey != "" && m.idempotency[ev.IdempotencyKey] {
		return &engine.DuplicateEventError{
			EmployeeID:     ev.EmployeeID,
			Timestamp:      ev.Timestamp,
			IdempotencyKey: ev.IdempotencyKey,
		}
	}

	evs := m.events[ev.EmployeeID]

	// Binary search for the insertion point keeps reads timestamp-ordered.
	i := sort.Search(len(evs), func(i int) bool {
		return evs[i].Timestamp.After(ev.Timestamp)
	})
	evs = append(evs, engine.AttendanceEvent{})
	copy(evs[i+1:], evs[i:])
	evs[i] = ev
	m.events[ev.EmployeeID] = evs

	if ev.IdempotencyKey != "" {
		m.idempotency[ev.IdempotencyKey] = true
	}
	return nil
}

func (m *Memory) EventsInRange(_ context.Context, employee engine.EmployeeID, from, to time.Time) ([]engine.AttendanceEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.AttendanceEvent
	for _, ev := range m.events[employee] {
		if !ev.Timestamp.Before(from) && !ev.Timestamp.After(to) {
			result = append(result, ev)
		}
	}
	return result, nil
}

func (m *Memory) LastEventBefore(_ context.Context, employee engine.EmployeeID, kind engine.EventKind, before time.Time) (*engine.AttendanceEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	evs := m.events[employee]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Kind == kind && evs[i].Timestamp.Before(before) {
			ev := evs[i]
			return &ev, nil
		}
	}
	return nil, nil
}

// =============================================================================
// LEAVES
// =============================================================================

func (m *Memory) SaveLeave(_ context.Context, g engine.LeaveGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.leaves[g.EmployeeID] {
		if existing.ID == g.ID {
			m.leaves[g.EmployeeID][i] = g
			return nil
		}
	}
	m.leaves[g.EmployeeID] = append(m.leaves[g.EmployeeID], g)
	return nil
}

func (m *Memory) LeavesOverlapping(_ context.Context, employee engine.EmployeeID, from, to engine.Day) ([]engine.LeaveGrant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.LeaveGrant
	for _, g := range m.leaves[employee] {
		if g.Start.BeforeOrEqual(to) && from.BeforeOrEqual(g.End) {
			result = append(result, g)
		}
	}
	return result, nil
}

// =============================================================================
// BALANCES
// =============================================================================

func (m *Memory) Balance(_ context.Context, employee engine.EmployeeID) (engine.OvertimeBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if b, ok := m.balances[employee]; ok {
		return b, nil
	}
	return engine.OvertimeBalance{
		EmployeeID:  employee,
		Banked:      engine.ZeroHours(),
		MonthToDate: engine.ZeroHours(),
	}, nil
}

func (m *Memory) SaveBalance(_ context.Context, b engine.OvertimeBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[b.EmployeeID] = b
	return nil
}

func (m *Memory) ResetMonthToDate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range m.balances {
		b.MonthToDate = engine.ZeroHours()
		m.balances[id] = b
	}
	return nil
}

// =============================================================================
// COMP-OFF UNITS
// =============================================================================

func (m *Memory) SaveCompOff(_ context.Context, u engine.CompOffUnit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compOffs[u.EmployeeID] = append(m.compOffs[u.EmployeeID], u)
	return nil
}

func (m *Memory) CompOffUnits(_ context.Context, employee engine.EmployeeID) ([]engine.CompOffUnit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.CompOffUnit, len(m.compOffs[employee]))
	copy(result, m.compOffs[employee])
	return result, nil
}

// =============================================================================
// TASKS
// =============================================================================

func (m *Memory) Task(_ context.Context, id engine.TaskID) (*engine.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t, ok := m.tasks[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (m *Memory) SaveTask(_ context.Context, t engine.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *Memory) OpenTasks(_ context.Context) ([]engine.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.Task
	for _, t := range m.tasks {
		if t.Status != engine.TaskDone && t.Stage != engine.StageNotified {
			result = append(result, t)
		}
	}
	return result, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) Employee(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx runs fn against the store directly. The in-memory store has no
// rollback; it exists for single-process tests where fn either fully
// succeeds or the test fails anyway.
func (m *Memory) WithTx(_ context.Context, fn func(engine.Store) error) error {
	return fn(m)
}
