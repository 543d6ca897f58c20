package workflow_test

import (
	"errors"
	"testing"

	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

func validRequester() workflow.Requester {
	return workflow.Requester{Name: "Siti Rahma", NIP: "198703122010012003", Unit: "Poli Umum"}
}

func validPatient(n string) workflow.Patient {
	return workflow.Patient{
		Name:         "Pasien " + n,
		RecordNumber: "12345678" + n,
		VisitDate:    "2026-08-20",
		Reason:       "entri ganda",
	}
}

func TestSubmission_HappyPathSinglePatient(t *testing.T) {
	// GIVEN: An intake for one patient record
	// WHEN: Driving requester -> patient -> signature
	// THEN: Each step advances the machine and Build returns the pieces

	sub, err := workflow.NewSubmission(1)
	if err != nil {
		t.Fatalf("NewSubmission: %v", err)
	}
	if sub.State() != workflow.StateCollectingRequester {
		t.Fatalf("initial state = %s", sub.State())
	}

	if err := sub.SetRequester(validRequester(), "Teguh"); err != nil {
		t.Fatalf("SetRequester: %v", err)
	}
	if sub.State() != workflow.StateCollectingPatient || sub.PatientStep() != 1 {
		t.Fatalf("after requester: state=%s step=%d", sub.State(), sub.PatientStep())
	}

	if err := sub.AddPatient(validPatient("1")); err != nil {
		t.Fatalf("AddPatient: %v", err)
	}
	if sub.State() != workflow.StateAwaitingSignature {
		t.Fatalf("after last patient: state=%s", sub.State())
	}

	if err := sub.Sign(); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if sub.State() != workflow.StateSubmitted {
		t.Fatalf("after sign: state=%s", sub.State())
	}

	req, patients, tech, err := sub.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if req.Name != "Siti Rahma" || len(patients) != 1 || tech != "Teguh" {
		t.Fatalf("Build = %v %v %q", req, patients, tech)
	}
}

func TestSubmission_MultiPatientStepsAndBack(t *testing.T) {
	// GIVEN: An intake for three patient records with two collected
	// WHEN: Stepping Back and re-adding
	// THEN: The step counter tracks the discards and re-entries

	sub, _ := workflow.NewSubmission(3)
	if err := sub.SetRequester(validRequester(), ""); err != nil {
		t.Fatalf("SetRequester: %v", err)
	}

	_ = sub.AddPatient(validPatient("1"))
	_ = sub.AddPatient(validPatient("2"))
	if sub.PatientStep() != 3 {
		t.Fatalf("expected step 3, got %d", sub.PatientStep())
	}

	if err := sub.Back(); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if sub.PatientStep() != 2 {
		t.Fatalf("expected step 2 after back, got %d", sub.PatientStep())
	}

	_ = sub.AddPatient(validPatient("2"))
	_ = sub.AddPatient(validPatient("3"))
	if sub.State() != workflow.StateAwaitingSignature {
		t.Fatalf("expected awaiting signature, got %s", sub.State())
	}
}

func TestSubmission_RejectsOutOfOrderTransitions(t *testing.T) {
	// GIVEN: A fresh intake
	// WHEN: Driving steps out of order
	// THEN: Every wrong transition yields ErrBadTransition

	sub, _ := workflow.NewSubmission(1)

	if err := sub.AddPatient(validPatient("1")); !errors.Is(err, workflow.ErrBadTransition) {
		t.Fatalf("AddPatient before requester: %v", err)
	}
	if err := sub.Sign(); !errors.Is(err, workflow.ErrBadTransition) {
		t.Fatalf("Sign before patients: %v", err)
	}
	if err := sub.Back(); !errors.Is(err, workflow.ErrBadTransition) {
		t.Fatalf("Back with nothing collected: %v", err)
	}
	if _, _, _, err := sub.Build(); !errors.Is(err, workflow.ErrBadTransition) {
		t.Fatalf("Build before submitted: %v", err)
	}

	_ = sub.SetRequester(validRequester(), "")
	if err := sub.SetRequester(validRequester(), ""); !errors.Is(err, workflow.ErrBadTransition) {
		t.Fatalf("double SetRequester: %v", err)
	}
}

func TestSubmission_PatientCountBounds(t *testing.T) {
	// GIVEN: Intakes at and beyond the patient bundle bounds
	// WHEN: Constructing
	// THEN: 1..4 accepted, 0 and 5 rejected

	for _, n := range []int{1, 2, 3, 4} {
		if _, err := workflow.NewSubmission(n); err != nil {
			t.Errorf("NewSubmission(%d): %v", n, err)
		}
	}
	for _, n := range []int{0, 5, -1} {
		if _, err := workflow.NewSubmission(n); err == nil {
			t.Errorf("NewSubmission(%d) accepted", n)
		}
	}
}

func TestTask_DisplayNameAndPrimaryRecord(t *testing.T) {
	// GIVEN: Tasks bundling one and three records
	// WHEN: Rendering queue labels
	// THEN: Single names stand alone; bundles carry a "(+N)" suffix

	single := workflow.Task{Patients: []workflow.Patient{validPatient("1")}}
	if single.DisplayName() != "Pasien 1" {
		t.Fatalf("single DisplayName = %q", single.DisplayName())
	}
	if single.PrimaryRecord() != "123456781" {
		t.Fatalf("PrimaryRecord = %q", single.PrimaryRecord())
	}

	bundle := workflow.Task{Patients: []workflow.Patient{
		validPatient("1"), validPatient("2"), validPatient("3"),
	}}
	if bundle.DisplayName() != "Pasien 1 (+2)" {
		t.Fatalf("bundle DisplayName = %q", bundle.DisplayName())
	}
}
