/*
submission.go - Multi-step intake state machine

PURPOSE:
  Request intake happens in steps: identify the requester, then collect
  each patient record in turn, then capture the signature, then submit.
  The steps used to live in ambient UI session state; here they are an
  explicit finite-state machine owned by the submission workflow and
  passed around as a value, so every transition is visible and testable.

STATES:
  CollectingRequester -> CollectingPatient(1) -> ... -> CollectingPatient(N)
    -> AwaitingSignature -> Submitted

  Back() from CollectingPatient(i>1) discards the last collected record
  and returns to the previous patient step.

SEE ALSO:
  - service.go: drives this machine during Submit
*/
package workflow

import (
	"errors"
	"fmt"
)

// SubmissionState names a step of the intake flow.
type SubmissionState string

const (
	StateCollectingRequester SubmissionState = "collecting_requester"
	StateCollectingPatient   SubmissionState = "collecting_patient"
	StateAwaitingSignature   SubmissionState = "awaiting_signature"
	StateSubmitted           SubmissionState = "submitted"
)

// ErrBadTransition is returned when a step is driven out of order.
var ErrBadTransition = errors.New("invalid submission transition")

// Submission is the intake state machine. Zero value is not usable; start
// with NewSubmission.
type Submission struct {
	state     SubmissionState
	expected  int // how many patient records this submission will collect
	requester Requester
	patients  []Patient
	tech      string // requested technician, empty = anyone
	signed    bool
}

// NewSubmission starts an intake for the given number of patient records.
func NewSubmission(patientCount int) (*Submission, error) {
	if patientCount < 1 || patientCount > MaxPatients {
		return nil, fmt.Errorf("patient count must be 1..%d, got %d", MaxPatients, patientCount)
	}
	return &Submission{state: StateCollectingRequester, expected: patientCount}, nil
}

// State returns the current step.
func (s *Submission) State() SubmissionState { return s.state }

// PatientStep returns which patient record is being collected next,
// 1-based. Zero outside the collecting state.
func (s *Submission) PatientStep() int {
	if s.state != StateCollectingPatient {
		return 0
	}
	return len(s.patients) + 1
}

// SetRequester records the requester identity and advances to the first
// patient step.
func (s *Submission) SetRequester(r Requester, requestedTech string) error {
	if s.state != StateCollectingRequester {
		return fmt.Errorf("%w: set requester in state %s", ErrBadTransition, s.state)
	}
	s.requester = r
	s.tech = requestedTech
	s.state = StateCollectingPatient
	return nil
}

// AddPatient records the next patient. After the last expected record the
// machine advances to AwaitingSignature.
func (s *Submission) AddPatient(p Patient) error {
	if s.state != StateCollectingPatient {
		return fmt.Errorf("%w: add patient in state %s", ErrBadTransition, s.state)
	}
	s.patients = append(s.patients, p)
	if len(s.patients) == s.expected {
		s.state = StateAwaitingSignature
	}
	return nil
}

// Back discards the most recent patient record and returns to its step.
func (s *Submission) Back() error {
	if s.state != StateCollectingPatient || len(s.patients) == 0 {
		return fmt.Errorf("%w: back in state %s", ErrBadTransition, s.state)
	}
	s.patients = s.patients[:len(s.patients)-1]
	return nil
}

// Sign marks the signature as captured and completes the machine.
func (s *Submission) Sign() error {
	if s.state != StateAwaitingSignature {
		return fmt.Errorf("%w: sign in state %s", ErrBadTransition, s.state)
	}
	s.signed = true
	s.state = StateSubmitted
	return nil
}

// Build returns the collected pieces. Only valid once Submitted.
func (s *Submission) Build() (Requester, []Patient, string, error) {
	if s.state != StateSubmitted {
		return Requester{}, nil, "", fmt.Errorf("%w: build in state %s", ErrBadTransition, s.state)
	}
	return s.requester, s.patients, s.tech, nil
}
