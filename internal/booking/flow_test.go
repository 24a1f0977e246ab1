package booking

import (
	"testing"
	"time"

	"github.com/carebridge/portal/internal/upstream"
)

var doctor = upstream.Doctor{ID: "d1", Name: "Dr. Alice", Specialization: "Cardiology"}

func TestFlowOpenResetsDraft(t *testing.T) {
	flow := NewFlow()
	if flow.IsOpen() {
		t.Fatal("new flow should be closed")
	}

	flow.Open(doctor)
	flow.Fill("2026-09-01", "09:30 AM", "persistent migraines")

	// Re-opening (even for the same doctor) starts a fresh draft.
	flow.Open(doctor)
	if flow.Draft.Date != "" || flow.Draft.Time != "" || flow.Draft.Reason != "" {
		t.Fatalf("draft not reset: %+v", flow.Draft)
	}
	if flow.Draft.DoctorID != "d1" {
		t.Fatalf("doctor id not captured: %+v", flow.Draft)
	}
	if flow.Phase != PhaseFilling {
		t.Fatalf("phase = %v, want Filling", flow.Phase)
	}
}

func TestFlowSubmitInvalidStaysFilling(t *testing.T) {
	flow := NewFlow()
	flow.Open(doctor)
	flow.Fill("", "", "too short")

	if _, ok := flow.Submit(now); ok {
		t.Fatal("invalid draft must not submit")
	}
	if flow.Phase != PhaseFilling {
		t.Fatalf("phase = %v, want Filling", flow.Phase)
	}
	for _, field := range []string{"date", "time", "reason"} {
		if !flow.FieldErrors.Has(field) {
			t.Fatalf("missing %s error: %v", field, flow.FieldErrors)
		}
	}
}

func TestFlowSubmitSuccessPath(t *testing.T) {
	flow := NewFlow()
	flow.Open(doctor)
	flow.Fill("2026-09-01", "02:00 PM", "persistent migraines")

	instant, ok := flow.Submit(now)
	if !ok {
		t.Fatalf("submit failed: %v", flow.FieldErrors)
	}
	if flow.Phase != PhaseSubmitting {
		t.Fatalf("phase = %v, want Submitting", flow.Phase)
	}
	want := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Fatalf("instant = %v, want %v", instant, want)
	}

	flow.Succeed()
	if flow.Phase != PhaseSuccess {
		t.Fatalf("phase = %v, want Success", flow.Phase)
	}
}

func TestFlowFailReturnsToForm(t *testing.T) {
	flow := NewFlow()
	flow.Open(doctor)
	flow.Fill("2026-09-01", "02:00 PM", "persistent migraines")
	if _, ok := flow.Submit(now); !ok {
		t.Fatal("submit should succeed")
	}

	flow.Fail("Doctor is not available at that time")
	if flow.Phase != PhaseFailed || flow.FormError == "" {
		t.Fatalf("flow = %+v", flow)
	}

	// The user can edit and resubmit after a failure.
	flow.Fill("2026-09-02", "02:00 PM", "persistent migraines")
	if flow.Phase != PhaseFilling {
		t.Fatalf("phase after edit = %v, want Filling", flow.Phase)
	}
}

func TestFlowCloseDiscardsUnconditionally(t *testing.T) {
	for _, setup := range []func(*Flow){
		func(f *Flow) {},
		func(f *Flow) { f.Fill("2026-09-01", "09:00 AM", "persistent migraines") },
		func(f *Flow) {
			f.Fill("2026-09-01", "09:00 AM", "persistent migraines")
			f.Submit(now)
			f.Succeed()
		},
	} {
		flow := NewFlow()
		flow.Open(doctor)
		setup(&flow)

		flow.Close()
		if flow.IsOpen() || flow.Draft != (Draft{}) || flow.FormError != "" {
			t.Fatalf("close did not discard: %+v", flow)
		}
	}
}

func TestFlowEditClearsFieldError(t *testing.T) {
	flow := NewFlow()
	flow.Open(doctor)
	flow.Fill("", "09:00 AM", "persistent migraines")
	flow.Submit(now)
	if !flow.FieldErrors.Has("date") {
		t.Fatal("expected date error")
	}

	flow.Fill("2026-09-01", "09:00 AM", "persistent migraines")
	if flow.FieldErrors.Has("date") {
		t.Fatal("editing the date should clear its error")
	}
}
