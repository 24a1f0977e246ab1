package booking

import (
	"time"

	"github.com/carebridge/portal/internal/upstream"
)

// Phase is the booking modal's mutually-exclusive state.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseFilling
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

// Flow is the modal state machine. Opening captures the target doctor and
// resets the draft; closing discards everything unconditionally.
type Flow struct {
	Phase       Phase
	Doctor      upstream.Doctor
	Draft       Draft
	FieldErrors FieldErrors
	FormError   string
}

// NewFlow starts closed.
func NewFlow() Flow {
	return Flow{Phase: PhaseClosed, FieldErrors: FieldErrors{}}
}

// Open captures the doctor and resets all draft fields.
func (f *Flow) Open(doctor upstream.Doctor) {
	f.Phase = PhaseFilling
	f.Doctor = doctor
	f.Draft = Draft{DoctorID: doctor.ID}
	f.FieldErrors = FieldErrors{}
	f.FormError = ""
}

// Fill replaces the draft's editable fields, keeping the captured doctor.
// Editing a field clears its error.
func (f *Flow) Fill(date, slot, reason string) {
	if f.Phase != PhaseFilling && f.Phase != PhaseFailed {
		return
	}
	if f.Draft.Date != date {
		delete(f.FieldErrors, "date")
	}
	if f.Draft.Time != slot {
		delete(f.FieldErrors, "time")
	}
	if f.Draft.Reason != reason {
		delete(f.FieldErrors, "reason")
	}
	f.Draft.Date = date
	f.Draft.Time = slot
	f.Draft.Reason = reason
	f.Phase = PhaseFilling
}

// Submit validates the draft and combines date and time into one instant.
// On any invalid field (including an uncombinable date/time pair) the flow
// stays in Filling with field errors and no request may be sent.
func (f *Flow) Submit(now time.Time) (time.Time, bool) {
	if f.Phase != PhaseFilling {
		return time.Time{}, false
	}
	errs := f.Draft.Validate(now)
	if len(errs) > 0 {
		f.FieldErrors = errs
		return time.Time{}, false
	}
	instant, err := f.Draft.Combine(now.Location())
	if err != nil {
		f.FieldErrors = FieldErrors{"date": "Please select a valid date and time"}
		return time.Time{}, false
	}
	f.Phase = PhaseSubmitting
	f.FieldErrors = FieldErrors{}
	f.FormError = ""
	return instant, true
}

// Succeed shows the confirmation; it holds until explicit dismissal.
func (f *Flow) Succeed() {
	if f.Phase == PhaseSubmitting {
		f.Phase = PhaseSuccess
	}
}

// Fail surfaces the server's message (or a fallback) and returns the flow
// to the form so the user can retry.
func (f *Flow) Fail(message string) {
	f.Phase = PhaseFailed
	f.FormError = message
}

// Close discards the draft unconditionally, from any phase.
func (f *Flow) Close() {
	*f = NewFlow()
}

// Open reports whether the modal is visible in any form.
func (f Flow) IsOpen() bool {
	return f.Phase != PhaseClosed
}
