/*
handlers.go - HTTP API handlers for the clinic deletion-request system

PURPOSE:
  Exposes the roster engine and the request queue via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Roster:
    POST   /api/roster/import        Upload the monthly shift grid (.xlsx)
    GET    /api/roster/active        Who is on duty (optional ?at=RFC3339)
    GET    /api/roster/entries       Current normalized roster

  Tasks:
    POST   /api/tasks                Submit a deletion request
    GET    /api/tasks                Open queue (optional ?technician=)
    GET    /api/tasks/recent         Monitor feed (optional ?limit=)
    POST   /api/tasks/{id}/claim     Technician takes a queued task
    POST   /api/tasks/{id}/complete  Technician finishes a task

  Archive & dashboard:
    GET    /api/archive              Completed tasks (optional ?q=)
    GET    /api/stats                Per-technician performance
    GET    /api/profiles/{name}      Staff-number prefill lookup

  Scenarios:
    GET    /api/scenarios            List demo datasets
    POST   /api/scenarios/load       Seed a demo dataset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Task not found
  - 409: Lifecycle conflicts (claiming a claimed task, wrong technician)
  - 422: Roster upload that could not be ingested
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fajarisfan/sirs-rme-pro/roster"
	"github.com/fajarisfan/sirs-rme-pro/store/sqlite"
	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

// maxUploadBytes bounds roster uploads; a monthly grid is a few KB.
const maxUploadBytes = 8 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Service  *workflow.Service
	Ingester *roster.Ingester
	Duty     workflow.DutyResolver
	Config   roster.Config

	// now is the wall clock; overridable in tests.
	now func() time.Time

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(store *sqlite.Store, svc *workflow.Service, ing *roster.Ingester, duty workflow.DutyResolver, cfg roster.Config) *Handler {
	return &Handler{
		Store:    store,
		Service:  svc,
		Ingester: ing,
		Duty:     duty,
		Config:   cfg,
		now:      time.Now,
	}
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ImportRoster ingests an uploaded schedule grid. The multipart field is
// "file"; a failed ingestion leaves the previous roster in place.
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart upload", err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing roster file", err)
		return
	}
	defer file.Close()

	if !h.Ingester.Ingest(r.Context(), file) {
		writeJSON(w, http.StatusUnprocessableEntity, ImportResultDTO{OK: false})
		return
	}

	entries, _ := h.Store.Count(r.Context())
	writeJSON(w, http.StatusOK, ImportResultDTO{OK: true, Entries: entries})
}

// ActiveStaff resolves who is on duty now, or at ?at= for inspection.
func (h *Handler) ActiveStaff(w http.ResponseWriter, r *http.Request) {
	at := h.now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'at' timestamp (use RFC3339)", err)
			return
		}
		at = parsed
	}
	if h.Config.Location != nil {
		at = at.In(h.Config.Location)
	}

	res, err := h.Duty.ActiveStaff(r.Context(), at)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Duty resolution failed", err)
		return
	}

	writeJSON(w, http.StatusOK, DutyDTO{
		Status: string(res.Status),
		Staff:  toStaffStrings(res.Staff),
		AsOf:   at.Format(time.RFC3339),
	})
}

// ListRosterEntries returns the current normalized roster.
func (h *Handler) ListRosterEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.AllEntries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list roster", err)
		return
	}

	dtos := make([]RosterEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = RosterEntryDTO{Person: string(e.Person), Day: e.Day, Code: e.Code}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TASK HANDLERS
// =============================================================================

// SubmitTask files a new deletion request.
func (h *Handler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	var req SubmitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	task, err := h.Service.Submit(r.Context(), workflow.SubmitInput{
		Requester: workflow.Requester{
			Name: req.Requester.Name,
			NIP:  req.Requester.NIP,
			Unit: req.Requester.Unit,
		},
		Patients:   toPatients(req.Patients),
		Technician: req.Technician,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Submission rejected", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskDTO(*task))
}

// OpenTasks returns the open queue, optionally scoped to a technician.
func (h *Handler) OpenTasks(w http.ResponseWriter, r *http.Request) {
	tech := roster.PersonID(r.URL.Query().Get("technician"))

	tasks, err := h.Service.Open(r.Context(), tech)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// RecentTasks returns the monitor feed.
func (h *Handler) RecentTasks(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	tasks, err := h.Service.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recent tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// ClaimTask moves a queued task to in_progress under a technician.
func (h *Handler) ClaimTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ClaimTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Technician == "" {
		writeError(w, http.StatusBadRequest, "Technician is required", nil)
		return
	}

	task, err := h.Service.Claim(r.Context(), id, roster.PersonID(req.Technician))
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(*task))
}

// CompleteTask finishes an in-progress task.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CompleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Technician == "" {
		writeError(w, http.StatusBadRequest, "Technician is required", nil)
		return
	}

	task, err := h.Service.Complete(r.Context(), id, roster.PersonID(req.Technician), req.NIP)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTO(*task))
}

// =============================================================================
// ARCHIVE & DASHBOARD HANDLERS
// =============================================================================

// SearchArchive returns completed tasks matching the query.
func (h *Handler) SearchArchive(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.SearchArchive(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search archive", err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskDTOs(tasks))
}

// Stats returns per-technician performance figures.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}

	dtos := make([]StatsDTO, len(stats))
	for i, s := range stats {
		dtos[i] = StatsDTO{
			Technician:      s.Technician,
			Completed:       s.Completed,
			AvgTurnaroundHr: s.AvgTurnaroundHr.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProfile returns the remembered staff number for a name.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	nip, err := h.Service.LookupNIP(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up profile", err)
		return
	}
	if nip == "" {
		writeError(w, http.StatusNotFound, "Profile not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, ProfileDTO{Name: name, NIP: nip})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeTaskError maps workflow lifecycle errors to HTTP statuses.
func writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found", nil)
	case errors.Is(err, workflow.ErrNotClaimable),
		errors.Is(err, workflow.ErrNotInProgress),
		errors.Is(err, workflow.ErrWrongTech):
		writeError(w, http.StatusConflict, "Task lifecycle conflict", err)
	default:
		writeError(w, http.StatusInternalServerError, "Task update failed", err)
	}
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

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
