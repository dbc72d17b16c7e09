/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Callers (API handlers, schedulers) classify errors with the helpers at
  the bottom of the file.

ERROR PHILOSOPHY:
  The engine favors silent degradation over hard failure for payroll-adjacent
  computations: a missing threshold makes a session non-overtime-eligible, an
  unmatched check-out is a no-op, an unmatchable holiday rule is skipped.
  Errors below are reserved for caller mistakes (invalid ranges, duplicate
  ingestion) and persistence failures - never for data-shape surprises in
  the event stream.
*/
package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateIdempotencyKey is returned when an event with the same
	// idempotency key already exists. Expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrInvalidRange is returned when a classification range ends before
	// it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrTaskNotFound is returned when a referenced task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrRulesUnavailable is returned when the rule provider cannot produce
	// a rule set at all. Missing entries within a rule set are NOT errors.
	ErrRulesUnavailable = errors.New("rule configuration unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateEventError reports a rejected re-ingestion of an event.
type DuplicateEventError struct {
	EmployeeID     EmployeeID
	Timestamp      time.Time
	IdempotencyKey string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("event already ingested: %s at %s (key: %s)",
		e.EmployeeID, e.Timestamp.Format(time.RFC3339), e.IdempotencyKey)
}

func (e *DuplicateEventError) Unwrap() error {
	return ErrDuplicateIdempotencyKey
}

// RangeError reports an invalid classification range.
type RangeError struct {
	Start Day
	End   Day
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: %s is after %s", e.Start, e.End)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrDuplicateIdempotencyKey)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrTaskNotFound)
}
