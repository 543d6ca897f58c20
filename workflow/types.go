/*
Package workflow implements the record-deletion request queue.

PURPOSE:
  End users submit requests to purge specific medical-record entries; a
  technician claims the request, fulfills it, and the completed task is
  archived. This package owns the task lifecycle and is the consumer of
  the roster engine: a request submitted without a named technician is
  assigned to whoever the duty resolver says is on shift.

KEY CONCEPTS IN THIS FILE (types.go):
  - Task: One deletion request, 1..4 patient records, queued -> done
  - Patient: A single record to purge (9-digit record number)
  - Profile: Remembered name -> staff number mapping for form prefill

LIFECYCLE:
  queued       submitted, waiting for a technician
  in_progress  claimed by a technician
  done         fulfilled; task becomes searchable archive

SEE ALSO:
  - submission.go: the multi-step intake state machine
  - service.go: queue operations and duty-gated assignment
*/
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fajarisfan/sirs-rme-pro/roster"
)

// =============================================================================
// TASK LIFECYCLE
// =============================================================================

// Status is the task lifecycle state.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// MaxPatients bounds how many records one request may bundle.
const MaxPatients = 4

// RecordNumberLength is the fixed width of a medical record number.
const RecordNumberLength = 9

// =============================================================================
// CORE TYPES
// =============================================================================

// Requester identifies who filed the deletion request.
type Requester struct {
	Name string `json:"name" validate:"required"`
	NIP  string `json:"nip" validate:"required"`
	Unit string `json:"unit" validate:"required"`
}

// Patient is one medical-record entry to purge.
type Patient struct {
	Name         string `json:"name" validate:"required"`
	RecordNumber string `json:"record_number" validate:"required,len=9,numeric"`
	VisitDate    string `json:"visit_date" validate:"required,datetime=2006-01-02"`
	Reason       string `json:"reason" validate:"required"`
}

// Task is a deletion request moving through the queue.
type Task struct {
	ID          string
	Requester   Requester
	Patients    []Patient
	AssignedTo  roster.PersonID // empty = anyone may claim
	Status      Status
	FileName    string
	SubmittedAt time.Time
	CompletedAt time.Time // zero until done
}

// PrimaryRecord is the record number the task is filed under: the first
// patient's.
func (t *Task) PrimaryRecord() string {
	if len(t.Patients) == 0 {
		return ""
	}
	return t.Patients[0].RecordNumber
}

// DisplayName is the queue label: first patient plus a "(+N)" suffix when
// the task bundles more records.
func (t *Task) DisplayName() string {
	if len(t.Patients) == 0 {
		return ""
	}
	name := t.Patients[0].Name
	if extra := len(t.Patients) - 1; extra > 0 {
		return fmt.Sprintf("%s (+%d)", name, extra)
	}
	return name
}

// ArchiveFileName names the generated fulfillment document. Rendering the
// document itself is outside this package; the name is task metadata.
func ArchiveFileName(t *Task, at time.Time) string {
	name := strings.NewReplacer(" ", "_", "/", "-").Replace(t.Patients[0].Name)
	return fmt.Sprintf("PENGAJUAN_HAPUS_%s_%s_%s.docx", name, t.PrimaryRecord(), at.Format("150405"))
}

// Profile remembers a person's staff number so forms can be prefilled.
type Profile struct {
	Name string
	NIP  string
}

// =============================================================================
// PERSISTENCE CONTRACTS
// =============================================================================

// TaskStore persists tasks.
type TaskStore interface {
	Create(ctx context.Context, t Task) error
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t Task) error

	// Open returns queued and in-progress tasks a technician may work on:
	// assigned to them or to nobody in particular. Empty tech returns the
	// whole open queue.
	Open(ctx context.Context, tech roster.PersonID) ([]Task, error)

	// Recent returns the newest tasks regardless of status, newest first.
	Recent(ctx context.Context, limit int) ([]Task, error)

	// Archive returns done tasks, optionally filtered by a substring of
	// the display name or primary record number, newest first.
	Archive(ctx context.Context, q string) ([]Task, error)
}

// ProfileStore persists name -> NIP mappings.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, p Profile) error
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

// DutyResolver is the slice of the roster engine this package consumes.
// Satisfied by roster.Resolver and roster.CachedResolver.
type DutyResolver interface {
	ActiveStaff(ctx context.Context, now time.Time) (roster.Result, error)
}
