/*
service.go - Queue operations and duty-gated assignment

PURPOSE:
  The operations surrounding a task's life: submit (with validation and
  duty-based technician assignment), claim, complete, plus the read
  paths the monitor and archive screens use.

ASSIGNMENT:
  A request may name a technician. When it doesn't, Submit consults the
  duty resolver: the first on-duty technician (sorted order) gets the
  task. No schedule loaded, or nobody on shift, leaves the task
  unassigned so any technician can claim it.

SEE ALSO:
  - submission.go: the intake machine Submit drives
  - roster/resolver.go: the duty computation
*/
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fajarisfan/sirs-rme-pro/roster"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrNotClaimable  = errors.New("task is not claimable")
	ErrNotInProgress = errors.New("task is not in progress")
	ErrWrongTech     = errors.New("task is assigned to another technician")
)

// =============================================================================
// SERVICE
// =============================================================================

// Service owns the deletion-request queue.
type Service struct {
	Tasks    TaskStore
	Profiles ProfileStore
	Duty     DutyResolver

	validate *validator.Validate
	now      func() time.Time
}

// NewService wires a queue service. duty may be nil in setups without a
// roster (every task is then submitted unassigned).
func NewService(tasks TaskStore, profiles ProfileStore, duty DutyResolver) *Service {
	return &Service{
		Tasks:    tasks,
		Profiles: profiles,
		Duty:     duty,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SetClock overrides the wall clock. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SubmitInput is the fully collected intake form.
type SubmitInput struct {
	Requester  Requester `validate:"required"`
	Patients   []Patient `validate:"required,min=1,max=4,dive"`
	Technician string    // requested technician id, empty = anyone
}

// Submit validates the input, drives the intake machine through its
// steps, assigns a technician, and persists the queued task.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Task, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid submission: %w", err)
	}

	// Replays the stepwise intake so the same transitions guard both the
	// interactive flow and this one-shot path.
	sub, err := NewSubmission(len(in.Patients))
	if err != nil {
		return nil, err
	}
	if err := sub.SetRequester(in.Requester, in.Technician); err != nil {
		return nil, err
	}
	for _, p := range in.Patients {
		if err := sub.AddPatient(p); err != nil {
			return nil, err
		}
	}
	if err := sub.Sign(); err != nil {
		return nil, err
	}
	requester, patients, tech, err := sub.Build()
	if err != nil {
		return nil, err
	}

	now := s.now()
	task := Task{
		ID:          uuid.New().String(),
		Requester:   requester,
		Patients:    patients,
		AssignedTo:  roster.PersonID(tech),
		Status:      StatusQueued,
		SubmittedAt: now,
	}
	task.FileName = ArchiveFileName(&task, now)

	if task.AssignedTo == "" {
		task.AssignedTo = s.pickOnDuty(ctx, now)
	}

	// Remember the requester's staff number for next time.
	if err := s.Profiles.UpsertProfile(ctx, Profile{Name: requester.Name, NIP: requester.NIP}); err != nil {
		logrus.WithError(err).Warn("profile upsert failed")
	}

	if err := s.Tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"task":       task.ID,
		"records":    len(task.Patients),
		"technician": task.AssignedTo,
	}).Info("deletion request queued")

	return &task, nil
}

// pickOnDuty returns the first currently on-duty technician, or "" when
// there is no schedule or nobody is standing by.
func (s *Service) pickOnDuty(ctx context.Context, now time.Time) roster.PersonID {
	if s.Duty == nil {
		return ""
	}
	res, err := s.Duty.ActiveStaff(ctx, now)
	if err != nil {
		logrus.WithError(err).Warn("duty resolution failed, leaving task unassigned")
		return ""
	}
	if res.Status == roster.StatusNoSchedule || len(res.Staff) == 0 {
		return ""
	}
	return res.Staff[0]
}

// Open returns the open queue for a technician.
func (s *Service) Open(ctx context.Context, tech roster.PersonID) ([]Task, error) {
	return s.Tasks.Open(ctx, tech)
}

// Recent returns the monitor feed.
func (s *Service) Recent(ctx context.Context, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.Tasks.Recent(ctx, limit)
}

// Claim moves a queued task to in_progress under the given technician.
// A task assigned to someone else cannot be claimed.
func (s *Service) Claim(ctx context.Context, taskID string, tech roster.PersonID) (*Task, error) {
	task, err := s.Tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.Status != StatusQueued {
		return nil, fmt.Errorf("%w: status %s", ErrNotClaimable, task.Status)
	}
	if task.AssignedTo != "" && task.AssignedTo != tech {
		return nil, fmt.Errorf("%w: assigned to %s", ErrWrongTech, task.AssignedTo)
	}

	task.Status = StatusInProgress
	task.AssignedTo = tech
	if err := s.Tasks.Update(ctx, *task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks an in-progress task done, stamps the completion time,
// and records the technician's staff number.
func (s *Service) Complete(ctx context.Context, taskID string, tech roster.PersonID, techNIP string) (*Task, error) {
	task, err := s.Tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.Status != StatusInProgress {
		return nil, fmt.Errorf("%w: status %s", ErrNotInProgress, task.Status)
	}
	if task.AssignedTo != tech {
		return nil, fmt.Errorf("%w: assigned to %s", ErrWrongTech, task.AssignedTo)
	}

	task.Status = StatusDone
	task.CompletedAt = s.now()
	if err := s.Tasks.Update(ctx, *task); err != nil {
		return nil, err
	}

	if techNIP != "" {
		if err := s.Profiles.UpsertProfile(ctx, Profile{Name: string(tech), NIP: techNIP}); err != nil {
			logrus.WithError(err).Warn("profile upsert failed")
		}
	}

	logrus.WithFields(logrus.Fields{"task": task.ID, "technician": tech}).Info("deletion request fulfilled")
	return task, nil
}

// SearchArchive returns completed tasks, optionally filtered by patient
// name or record number substring.
func (s *Service) SearchArchive(ctx context.Context, q string) ([]Task, error) {
	return s.Tasks.Archive(ctx, q)
}

// LookupNIP returns the remembered staff number for a name, or "".
func (s *Service) LookupNIP(ctx context.Context, name string) (string, error) {
	p, err := s.Profiles.GetProfile(ctx, name)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	return p.NIP, nil
}
