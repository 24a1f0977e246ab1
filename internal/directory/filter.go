// Package directory filters the fetched doctor list for display. Filtering
// is presentation-only: it never mutates the source slice and recomputing it
// with the same inputs yields the same result.
package directory

import (
	"strings"

	"github.com/carebridge/portal/internal/upstream"
)

// Filter narrows doctors by name substring and specialization.
type Filter struct {
	SearchTerm     string
	Specialization string
}

// Empty reports whether no filter is active.
func (f Filter) Empty() bool {
	return f.SearchTerm == "" && f.Specialization == ""
}

// Matches applies both predicates: case-insensitive substring match on the
// name, and case-insensitive equality on specialization when one is
// selected.
func (f Filter) Matches(d upstream.Doctor) bool {
	matchesSearch := strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.SearchTerm))
	matchesSpecialization := f.Specialization == "" ||
		strings.EqualFold(d.Specialization, f.Specialization)
	return matchesSearch && matchesSpecialization
}

// Apply returns the doctors passing the filter, in input order.
func (f Filter) Apply(doctors []upstream.Doctor) []upstream.Doctor {
	if f.Empty() {
		return doctors
	}
	filtered := make([]upstream.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if f.Matches(d) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
