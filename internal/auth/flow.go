package auth

// Phase is the auth flow's mutually-exclusive state. Modelling it as one
// variant instead of independent booleans makes "loading and success at the
// same time" unrepresentable.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

// Flow drives one login or registration attempt.
type Flow struct {
	Phase       Phase
	FieldErrors FieldErrors
	FormError   string
}

// NewFlow starts in Editing with no errors.
func NewFlow() Flow {
	return Flow{Phase: PhaseEditing, FieldErrors: FieldErrors{}}
}

// Check runs the synchronous rule set. On any failure the flow returns to
// Editing carrying field errors and no network call may be made; otherwise
// it advances to Submitting.
func (f *Flow) Check(errs FieldErrors) bool {
	if len(errs) > 0 {
		f.Phase = PhaseEditing
		f.FieldErrors = errs
		return false
	}
	f.Phase = PhaseSubmitting
	f.FieldErrors = FieldErrors{}
	f.FormError = ""
	return true
}

// Succeed marks the submission accepted.
func (f *Flow) Succeed() {
	f.Phase = PhaseSuccess
}

// Fail records the server's message (or a fallback) as a form-level error
// and returns the flow to Editing.
func (f *Flow) Fail(message string) {
	f.Phase = PhaseFailed
	f.FormError = message
}

// Editing reports whether the form should accept input again. Failed flows
// are editable: the user corrects and resubmits.
func (f Flow) Editing() bool {
	return f.Phase == PhaseEditing || f.Phase == PhaseFailed
}
