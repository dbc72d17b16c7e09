/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - rulebook/rulebook.go: RulebookJSON (the rules document travels as-is)
*/
package api

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	ManagerID     string   `json:"manager_id,omitempty"`
	OptedHolidays []string `json:"opted_holidays,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
type CreateEmployeeRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	ManagerID     string   `json:"manager_id,omitempty"`
	OptedHolidays []string `json:"opted_holidays,omitempty"`
}

// =============================================================================
// ATTENDANCE EVENTS
// =============================================================================

// IngestEventRequest is a single clock punch submitted by a capture device
// or an authorized corrector.
type IngestEventRequest struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	Timestamp      string `json:"timestamp"` // RFC 3339
	Kind           string `json:"kind"`      // check_in, check_out, break_in, break_out
	LocationLabel  string `json:"location_label,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	CreatedBy      string `json:"created_by,omitempty"`
}

// IngestEventResponse reports what the ingestion produced. The overtime
// fields are meaningful only for check-out events that matched a session.
type IngestEventResponse struct {
	Accepted       bool            `json:"accepted"`
	SessionMatched bool            `json:"session_matched"`
	SessionHours   string          `json:"session_hours,omitempty"`
	OvertimeHours  string          `json:"overtime_hours,omitempty"`
	CompOffsEarned int             `json:"comp_offs_earned"`
	Balance        *BalanceDTO     `json:"balance,omitempty"`
	CompOffs       []CompOffDTO    `json:"comp_offs,omitempty"`
}

// =============================================================================
// LEAVES
// =============================================================================

// LeaveDTO represents a leave grant.
type LeaveDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Start      string `json:"start"` // YYYY-MM-DD
	End        string `json:"end"`   // YYYY-MM-DD
	Type       string `json:"type,omitempty"`
	Status     string `json:"status"`
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// DayDTO is one classified calendar day.
type DayDTO struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Note     string `json:"note,omitempty"`
}

// ClassificationResponse is the classification of a date range plus the
// per-category counts payroll consumers read.
type ClassificationResponse struct {
	EmployeeID string         `json:"employee_id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Days       []DayDTO       `json:"days"`
	Summary    map[string]int `json:"summary"`
}

// =============================================================================
// OVERTIME
// =============================================================================

// BalanceDTO carries decimal hour strings, never floats.
type BalanceDTO struct {
	EmployeeID  string `json:"employee_id"`
	Banked      string `json:"banked_hours"`
	MonthToDate string `json:"month_to_date_hours"`
}

// CompOffDTO is one earned comp-off unit.
type CompOffDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	EarnedDate string `json:"earned_date"`
	Reason     string `json:"reason,omitempty"`
}

// =============================================================================
// TASKS
// =============================================================================

// TaskDTO represents an escalation-tracked task.
type TaskDTO struct {
	ID          string `json:"id"`
	BaseDueDate string `json:"base_due_date,omitempty"`
	Stage       string `json:"stage"`
	Status      string `json:"status"`
	Stage1Days  *int   `json:"stage1_days,omitempty"`
	Stage2Days  *int   `json:"stage2_days,omitempty"`
	Stage3Days  *int   `json:"stage3_days,omitempty"`
}

// DueDateResponse is the computed next actionable due date for a task.
type DueDateResponse struct {
	TaskID  string `json:"task_id"`
	DueDate string `json:"due_date"` // "none" when no further date applies
	Overdue bool   `json:"overdue"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
