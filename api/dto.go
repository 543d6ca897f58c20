/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - workflow/types.go: The domain types behind them
*/
package api

import (
	"time"

	"github.com/fajarisfan/sirs-rme-pro/roster"
	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

// =============================================================================
// ROSTER TYPES
// =============================================================================

// ImportResultDTO reports whether a roster upload replaced the schedule.
type ImportResultDTO struct {
	OK      bool `json:"ok"`
	Entries int  `json:"entries,omitempty"`
}

// DutyDTO is the duty resolution response.
type DutyDTO struct {
	Status string   `json:"status"` // "ok" or "no_schedule"
	Staff  []string `json:"staff"`
	AsOf   string   `json:"as_of"`
}

// RosterEntryDTO is one normalized roster cell.
type RosterEntryDTO struct {
	Person string `json:"person"`
	Day    int    `json:"day"`
	Code   string `json:"shift_code"`
}

// =============================================================================
// TASK TYPES
// =============================================================================

// PatientDTO is one record to purge.
type PatientDTO struct {
	Name         string `json:"name"`
	RecordNumber string `json:"record_number"`
	VisitDate    string `json:"visit_date"`
	Reason       string `json:"reason"`
}

// SubmitTaskRequest is the one-shot intake payload.
type SubmitTaskRequest struct {
	Requester struct {
		Name string `json:"name"`
		NIP  string `json:"nip"`
		Unit string `json:"unit"`
	} `json:"requester"`
	Patients   []PatientDTO `json:"patients"`
	Technician string       `json:"technician,omitempty"` // empty = anyone on duty
}

// ClaimTaskRequest binds a technician to a queued task.
type ClaimTaskRequest struct {
	Technician string `json:"technician"`
}

// CompleteTaskRequest finishes an in-progress task.
type CompleteTaskRequest struct {
	Technician string `json:"technician"`
	NIP        string `json:"nip,omitempty"`
}

// TaskDTO represents a task in API responses.
type TaskDTO struct {
	ID            string       `json:"id"`
	DisplayName   string       `json:"display_name"`
	PrimaryRecord string       `json:"primary_record"`
	Unit          string       `json:"unit"`
	Requester     string       `json:"requester"`
	RequesterNIP  string       `json:"requester_nip"`
	Technician    string       `json:"technician,omitempty"`
	Status        string       `json:"status"`
	FileName      string       `json:"file_name"`
	Patients      []PatientDTO `json:"patients"`
	SubmittedAt   string       `json:"submitted_at"`
	CompletedAt   string       `json:"completed_at,omitempty"`
}

// StatsDTO is one technician's performance row.
type StatsDTO struct {
	Technician      string `json:"technician"`
	Completed       int    `json:"completed"`
	AvgTurnaroundHr string `json:"avg_turnaround_hours"`
}

// ProfileDTO is a remembered name -> staff-number mapping.
type ProfileDTO struct {
	Name string `json:"name"`
	NIP  string `json:"nip"`
}

// ScenarioDTO describes a loadable demo dataset.
type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Current     bool   `json:"current"`
}

// LoadScenarioRequest selects a demo dataset.
type LoadScenarioRequest struct {
	Name string `json:"name"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toTaskDTO(t workflow.Task) TaskDTO {
	dto := TaskDTO{
		ID:            t.ID,
		DisplayName:   t.DisplayName(),
		PrimaryRecord: t.PrimaryRecord(),
		Unit:          t.Requester.Unit,
		Requester:     t.Requester.Name,
		RequesterNIP:  t.Requester.NIP,
		Technician:    string(t.AssignedTo),
		Status:        string(t.Status),
		FileName:      t.FileName,
		SubmittedAt:   t.SubmittedAt.Format(time.RFC3339),
	}
	if !t.CompletedAt.IsZero() {
		dto.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	for _, p := range t.Patients {
		dto.Patients = append(dto.Patients, PatientDTO(p))
	}
	return dto
}

func toTaskDTOs(tasks []workflow.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t)
	}
	return dtos
}

func toPatients(in []PatientDTO) []workflow.Patient {
	out := make([]workflow.Patient, len(in))
	for i, p := range in {
		out[i] = workflow.Patient(p)
	}
	return out
}

func toStaffStrings(staff []roster.PersonID) []string {
	out := make([]string, len(staff))
	for i, s := range staff {
		out[i] = string(s)
	}
	return out
}
