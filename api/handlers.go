/*
handlers.go - HTTP API handlers for the temporal accounting engine

PURPOSE:
  Exposes the engine via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic.

ENDPOINTS:
  Events:
    POST   /api/events                        Ingest a clock punch

  Employees:
    GET    /api/employees                     List all employees
    POST   /api/employees                     Create/update employee
    GET    /api/employees/{id}                Get employee details
    GET    /api/employees/{id}/classification Classify a date range
    GET    /api/employees/{id}/balance        Overtime balance
    GET    /api/employees/{id}/comp-offs      Earned comp-off units
    GET    /api/employees/{id}/leaves         Leave grants in a range

  Leaves:
    POST   /api/leaves                        Create/update leave grant

  Tasks:
    GET    /api/tasks                         List open tasks
    POST   /api/tasks                         Create/update task
    GET    /api/tasks/{id}                    Get task
    GET    /api/tasks/{id}/due-date           Next actionable due date
                                              (optional ?as_of=YYYY-MM-DD)

  Rules:
    GET    /api/rules                         Current rulebook JSON
    PUT    /api/rules                         Replace rulebook (hot reload)

  Admin:
    POST   /api/admin/month-reset             Zero month-to-date counters

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate idempotency key)
  - 500: Internal errors

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scheduler.go: Background month-reset and escalation scans
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/temporal-engine/engine"
	"github.com/warp/temporal-engine/rulebook"
	"github.com/warp/temporal-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  *sqlite.Store
	Rules  *rulebook.Provider
	Engine *engine.OvertimeEngine
}

// NewHandler creates a new handler with the given store, rule provider, and
// overtime engine.
func NewHandler(store *sqlite.Store, rules *rulebook.Provider, eng *engine.OvertimeEngine) *Handler {
	return &Handler{Store: store, Rules: rules, Engine: eng}
}

// =============================================================================
// EVENT INGESTION
// =============================================================================

// IngestEvent accepts a clock punch, appends it to the event log, and for
// check-outs runs the overtime transition.
// POST /api/events
func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	var req IngestEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.ID == "" || req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "id and employee_id are required", nil)
		return
	}

	kind := engine.EventKind(req.Kind)
	switch kind {
	case engine.KindCheckIn, engine.KindCheckOut, engine.KindBreakIn, engine.KindBreakOut:
	default:
		writeError(w, http.StatusBadRequest, "Unknown event kind", nil)
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "timestamp must be RFC 3339", err)
		return
	}

	ev := engine.AttendanceEvent{
		ID:             engine.EventID(req.ID),
		EmployeeID:     engine.EmployeeID(req.EmployeeID),
		Timestamp:      ts,
		Kind:           kind,
		LocationLabel:  req.LocationLabel,
		IdempotencyKey: req.IdempotencyKey,
		CreatedBy:      req.CreatedBy,
		CreatedAt:      time.Now().UTC(),
	}

	result, err := h.Engine.Ingest(r.Context(), ev)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := IngestEventResponse{
		Accepted:       true,
		SessionMatched: result.Matched,
		CompOffsEarned: len(result.Emitted),
	}
	if result.Matched {
		resp.SessionHours = result.SessionHours.String()
		resp.OvertimeHours = result.Overtime.String()
		resp.Balance = toBalanceDTO(result.Balance)
	}
	for _, u := range result.Emitted {
		resp.CompOffs = append(resp.CompOffs, toCompOffDTO(u))
	}

	writeJSON(w, http.StatusCreated, resp)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee creates or updates an employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" || req.Category == "" {
		writeError(w, http.StatusBadRequest, "id, name, and category are required", nil)
		return
	}

	emp := engine.Employee{
		ID:            engine.EmployeeID(req.ID),
		Name:          req.Name,
		Category:      engine.RoleCategory(req.Category),
		ManagerID:     engine.EmployeeID(req.ManagerID),
		OptedHolidays: req.OptedHolidays,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.Employee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// GetClassification classifies every day in [from, to] for one employee.
// GET /api/employees/{id}/classification?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetClassification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	from, err := parseDayParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD", err)
		return
	}
	to, err := parseDayParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD", err)
		return
	}

	emp, err := h.Store.Employee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	events, err := h.Store.EventsInRange(ctx, id, from.Time, to.AddDays(1).Time)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load events", err)
		return
	}
	leaves, err := h.Store.LeavesOverlapping(ctx, id, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leaves", err)
		return
	}

	rules, err := h.Rules.Rules(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Rules unavailable", err)
		return
	}

	classifier := engine.NewClassifier(rules)
	days, err := classifier.ClassifyRange(engine.ClassifyInput{
		Employee: *emp,
		Events:   events,
		Leaves:   leaves,
	}, from, to)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := ClassificationResponse{
		EmployeeID: string(id),
		From:       from.String(),
		To:         to.String(),
		Days:       make([]DayDTO, len(days)),
		Summary:    make(map[string]int),
	}
	for i, d := range days {
		resp.Days[i] = DayDTO{Date: d.Date.String(), Category: string(d.Category), Note: d.Note}
	}
	for cat, n := range engine.Summarize(days) {
		resp.Summary[string(cat)] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// OVERTIME
// =============================================================================

// GetBalance returns an employee's overtime balance.
// GET /api/employees/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	balance, err := h.Store.Balance(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get balance", err)
		return
	}
	balance.EmployeeID = id
	writeJSON(w, http.StatusOK, toBalanceDTO(balance))
}

// ListCompOffs returns an employee's earned comp-off units.
// GET /api/employees/{id}/comp-offs
func (h *Handler) ListCompOffs(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	units, err := h.Store.CompOffUnits(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list comp-offs", err)
		return
	}

	dtos := make([]CompOffDTO, len(units))
	for i, u := range units {
		dtos[i] = toCompOffDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TriggerMonthReset zeroes every employee's month-to-date counter. The
// scheduler calls the same operation at month boundaries; the endpoint
// exists for admin/testing use.
// POST /api/admin/month-reset
func (h *Handler) TriggerMonthReset(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.ResetMonthToDate(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset month-to-date", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// LEAVES
// =============================================================================

// SubmitLeave creates or updates a leave grant.
// POST /api/leaves
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req LeaveDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "id and employee_id are required", nil)
		return
	}

	start, err := parseDayString(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD", err)
		return
	}
	end, err := parseDayString(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD", err)
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "start must not be after end", nil)
		return
	}

	status := engine.LeaveStatus(req.Status)
	if status == "" {
		status = engine.LeavePending
	}

	grant := engine.LeaveGrant{
		ID:         req.ID,
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		Start:      start,
		End:        end,
		Type:       req.Type,
		Status:     status,
	}
	if err := h.Store.SaveLeave(r.Context(), grant); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(grant))
}

// ListLeaves returns an employee's leave grants overlapping a range.
// GET /api/employees/{id}/leaves?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	from, err := parseDayParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD", err)
		return
	}
	to, err := parseDayParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD", err)
		return
	}

	grants, err := h.Store.LeavesOverlapping(r.Context(), id, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}

	dtos := make([]LeaveDTO, len(grants))
	for i, g := range grants {
		dtos[i] = toLeaveDTO(g)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TASKS
// =============================================================================

// ListOpenTasks returns tasks that are neither done nor terminally notified.
// GET /api/tasks
func (h *Handler) ListOpenTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.OpenTasks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTask creates or updates a task.
// POST /api/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", nil)
		return
	}

	task := engine.Task{
		ID:         engine.TaskID(req.ID),
		Stage:      engine.StageNone,
		Status:     engine.TaskTodo,
		Stage1Days: req.Stage1Days,
		Stage2Days: req.Stage2Days,
		Stage3Days: req.Stage3Days,
	}
	if req.Stage != "" {
		task.Stage = engine.EscalationStage(req.Stage)
	}
	if req.Status != "" {
		task.Status = engine.TaskStatus(req.Status)
	}
	if req.BaseDueDate != "" {
		d, err := parseDayString(req.BaseDueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "base_due_date must be YYYY-MM-DD", err)
			return
		}
		task.BaseDueDate = &d
	}

	if err := h.Store.SaveTask(r.Context(), task); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save task", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(task))
}

// GetTask returns a single task.
// GET /api/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id := engine.TaskID(chi.URLParam(r, "id"))

	task, err := h.Store.Task(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get task", err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Task not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(*task))
}

// GetDueDate computes a task's next actionable due date. Defaults to today;
// an explicit as_of date makes overdue checks reproducible.
// GET /api/tasks/{id}/due-date?as_of=YYYY-MM-DD
func (h *Handler) GetDueDate(w http.ResponseWriter, r *http.Request) {
	id := engine.TaskID(chi.URLParam(r, "id"))

	asOf := engine.Today()
	if q := r.URL.Query().Get("as_of"); q != "" {
		d, err := parseDayString(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD", err)
			return
		}
		asOf = d
	}

	task, err := h.Store.Task(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get task", err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "Task not found", nil)
		return
	}

	due := engine.NextDueDate(*task, asOf)
	writeJSON(w, http.StatusOK, DueDateResponse{
		TaskID:  string(id),
		DueDate: engine.FormatDueDate(due),
		Overdue: due.Overdue,
	})
}

// =============================================================================
// RULES
// =============================================================================

// GetRules returns the stored rulebook JSON document.
// GET /api/rules
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.LoadRulebook(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rulebook", err)
		return
	}
	if doc == "" {
		doc = "{}"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

// UpdateRules validates, persists, and hot-swaps the rulebook.
// PUT /api/rules
func (h *Handler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	var doc rulebook.RulebookJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rulebook JSON", err)
		return
	}

	set, err := rulebook.FromJSON(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rulebook", err)
		return
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode rulebook", err)
		return
	}
	if err := h.Store.SaveRulebook(r.Context(), string(raw)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save rulebook", err)
		return
	}

	// Swap after persist so a restart sees the same rules.
	h.Rules.Update(set)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(e engine.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            string(e.ID),
		Name:          e.Name,
		Category:      string(e.Category),
		ManagerID:     string(e.ManagerID),
		OptedHolidays: e.OptedHolidays,
	}
}

func toBalanceDTO(b engine.OvertimeBalance) *BalanceDTO {
	return &BalanceDTO{
		EmployeeID:  string(b.EmployeeID),
		Banked:      b.Banked.String(),
		MonthToDate: b.MonthToDate.String(),
	}
}

func toCompOffDTO(u engine.CompOffUnit) CompOffDTO {
	return CompOffDTO{
		ID:         u.ID,
		EmployeeID: string(u.EmployeeID),
		EarnedDate: u.EarnedDate.String(),
		Reason:     u.Reason,
	}
}

func toLeaveDTO(g engine.LeaveGrant) LeaveDTO {
	return LeaveDTO{
		ID:         g.ID,
		EmployeeID: string(g.EmployeeID),
		Start:      g.Start.String(),
		End:        g.End.String(),
		Type:       g.Type,
		Status:     string(g.Status),
	}
}

func toTaskDTO(t engine.Task) TaskDTO {
	dto := TaskDTO{
		ID:         string(t.ID),
		Stage:      string(t.Stage),
		Status:     string(t.Status),
		Stage1Days: t.Stage1Days,
		Stage2Days: t.Stage2Days,
		Stage3Days: t.Stage3Days,
	}
	if t.BaseDueDate != nil {
		dto.BaseDueDate = t.BaseDueDate.String()
	}
	return dto
}

func parseDayParam(r *http.Request, name string) (engine.Day, error) {
	return parseDayString(r.URL.Query().Get(name))
}

func parseDayString(s string) (engine.Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return engine.Day{}, err
	}
	return engine.DayOf(t), nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps domain errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrDuplicateIdempotencyKey):
		writeError(w, http.StatusConflict, "Duplicate event", err)
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
