// Package booking implements the appointment booking flow: the transient
// draft, its validation, and the modal's state machine.
package booking

import (
	"strings"
	"time"
)

// TimeSlots is the fixed half-hour grid spanning the morning and afternoon
// shifts. The strings are what the form posts and what Combine parses.
var TimeSlots = []string{
	"09:00 AM",
	"09:30 AM",
	"10:00 AM",
	"10:30 AM",
	"11:00 AM",
	"11:30 AM",
	"02:00 PM",
	"02:30 PM",
	"03:00 PM",
	"03:30 PM",
	"04:00 PM",
	"04:30 PM",
}

const (
	dateLayout    = "2006-01-02"
	combineLayout = "2006-01-02 03:04 PM"

	minReasonLen = 10
)

// FieldErrors maps draft field names to user-facing messages.
type FieldErrors map[string]string

// Has reports whether the field carries an error.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Draft is the unsaved booking form, scoped to one open modal. It is
// discarded whenever the modal closes.
type Draft struct {
	DoctorID string
	Date     string // "2006-01-02"
	Time     string // one of TimeSlots
	Reason   string
}

// Validate applies the draft rule set against the given current time:
// date present and not before today's calendar date, time drawn from the
// slot grid, reason at least 10 characters after trimming.
func (d Draft) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}

	if d.Date == "" {
		errs["date"] = "Please select a date"
	} else if day, err := time.ParseInLocation(dateLayout, d.Date, now.Location()); err != nil {
		errs["date"] = "Please select a valid date"
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if day.Before(today) {
			errs["date"] = "Please select today or a future date"
		}
	}

	if d.Time == "" {
		errs["time"] = "Please select a time"
	} else if !validSlot(d.Time) {
		errs["time"] = "Please select a time from the available slots"
	}

	reason := strings.TrimSpace(d.Reason)
	if reason == "" {
		errs["reason"] = "Please provide a reason"
	} else if len(reason) < minReasonLen {
		errs["reason"] = "At least 10 characters required"
	}

	return errs
}

// Combine parses the draft's date and time strings into the single instant
// sent to the upstream API. The instant is anchored in loc (the portal's
// local zone in production).
func (d Draft) Combine(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(combineLayout, d.Date+" "+d.Time, loc)
}

func validSlot(s string) bool {
	for _, slot := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}
