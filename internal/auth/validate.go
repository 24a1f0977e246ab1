// Package auth holds the client-side credential rules. Validation failures
// never reach the network; they render as per-field messages.
package auth

import (
	"net/url"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	hasLower = regexp.MustCompile(`[a-z]`)
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasDigit = regexp.MustCompile(`\d`)
)

// Specializations is the fixed list a doctor registers under.
var Specializations = []string{
	"cardiology",
	"dermatology",
	"endocrinology",
	"gastroenterology",
	"general-practice",
	"neurology",
	"oncology",
	"orthopedics",
	"pediatrics",
	"psychiatry",
	"radiology",
	"surgery",
	"other",
}

// FieldErrors maps form field names to user-facing messages.
type FieldErrors map[string]string

// Has reports whether the field carries an error.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// LoginForm is the transient login credential set.
type LoginForm struct {
	Email    string
	Password string
	Role     string
}

// Validate applies the login rule set: well-formed email, password present
// and at least 6 characters.
func (f LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}

	if f.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		errs["email"] = "Please enter a valid email address"
	}

	if f.Password == "" {
		errs["password"] = "Password is required"
	} else if len(f.Password) < 6 {
		errs["password"] = "Password must be at least 6 characters"
	}

	return errs
}

// RegisterForm is the transient registration form.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            string
	Specialization  string
	PhotoURL        string
}

// Validate applies the registration rule set: name at least 2 characters
// after trimming, well-formed email, password at least 8 characters with
// upper/lower/digit, matching confirmation, a specialization from the fixed
// list for doctors, and a well-formed photo URL when one is given.
func (f RegisterForm) Validate() FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		errs["name"] = "Name is required"
	} else if len(name) < 2 {
		errs["name"] = "Name must be at least 2 characters"
	}

	if f.Email == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		errs["email"] = "Please enter a valid email address"
	}

	if f.Password == "" {
		errs["password"] = "Password is required"
	} else if len(f.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	} else if !hasLower.MatchString(f.Password) || !hasUpper.MatchString(f.Password) || !hasDigit.MatchString(f.Password) {
		errs["password"] = "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	}

	if f.ConfirmPassword == "" {
		errs["confirm_password"] = "Please confirm your password"
	} else if f.Password != f.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match"
	}

	if strings.EqualFold(f.Role, "doctor") {
		if strings.TrimSpace(f.Specialization) == "" {
			errs["specialization"] = "Specialization is required for doctors"
		} else if !validSpecialization(f.Specialization) {
			errs["specialization"] = "Please choose a specialization from the list"
		}
	}

	if photo := strings.TrimSpace(f.PhotoURL); photo != "" {
		if u, err := url.Parse(photo); err != nil || !u.IsAbs() || u.Host == "" {
			errs["photo_url"] = "Please enter a valid URL"
		}
	}

	return errs
}

func validSpecialization(s string) bool {
	for _, known := range Specializations {
		if strings.EqualFold(s, known) {
			return true
		}
	}
	return false
}
