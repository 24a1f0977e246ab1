// Package appointments holds the client-side view of appointment rows:
// the status enumeration, the role-scoped row mapping, and the page
// view-model with its optimistic patch.
package appointments

import "strings"

// Status is the closed appointment state enumeration. The upstream spells
// the completed state two ways: the patient endpoints use "COMPLETE", the
// doctor endpoints "COMPLETED". Both decode to StatusCompleted here and the
// wire spelling is re-derived per endpoint; nothing outside the wire
// mapping sees the patient spelling.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus normalizes a wire status. The doctor endpoint emits
// lower-case values; both completed spellings are accepted.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return StatusPending, true
	case "COMPLETE", "COMPLETED":
		return StatusCompleted, true
	case "CANCELLED":
		return StatusCancelled, true
	default:
		return "", false
	}
}

// Terminal reports whether no further client-initiated transition is
// offered. Only PENDING is non-terminal.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PatientWire is the spelling the patient list filter expects.
func (s Status) PatientWire() string {
	if s == StatusCompleted {
		return "COMPLETE"
	}
	return string(s)
}

// DoctorWire is the spelling the doctor endpoints expect.
func (s Status) DoctorWire() string {
	return string(s)
}

// Label is the human-readable form ("Pending", "Completed", "Cancelled").
func (s Status) Label() string {
	v := string(s)
	if v == "" {
		return ""
	}
	return v[:1] + strings.ToLower(v[1:])
}
