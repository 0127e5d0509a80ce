// internal/form/validate.go
//
// Forms subsystem: server-side field validation.
//
// Context
//   The signup, login, and reset-password views post user input that must be
//   checked before any call leaves the process.  Rules here are the single
//   source of truth for both the blur-style single-field check and the full
//   recompute on submit.  Validation failures never trigger a network call;
//   callers re-render with the ErrorSet instead.
//
// Workflow
//   •  Validate checks one field against the form’s current values (the
//      confirm-password rule needs the password for comparison).
//   •  SignupForm.Validate / LoginForm.Validate / ResetForm.Validate
//      recompute every field regardless of prior state and return a full
//      ErrorSet; an empty set means submission may proceed.
//   •  Callers wrap a non-empty ErrorSet in Error (see IsValidationError)
//      and treat it as a user error, not a 500.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"regexp"
)

// -----------------------------------------------------------------------------
// Field set
// -----------------------------------------------------------------------------

// Field names one input on a form.  The set is closed; handlers never index
// forms by request-supplied strings.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldMobileNumber    Field = "mobileNumber"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

// ErrorSet maps a field to a human-readable message.  Absence of a key means
// the field is currently valid.
type ErrorSet map[Field]string

// -----------------------------------------------------------------------------
// Error type
// -----------------------------------------------------------------------------

// Error wraps an ErrorSet and satisfies the error interface.
//
// It allows handlers to distinguish user input errors from system failures
// via errors.As / IsValidationError.
type Error struct{ Fields ErrorSet }

func (e Error) Error() string { return "form validation failed" }

// IsValidationError reports whether err came from failed validation.
func IsValidationError(err error) bool {
	var ve Error
	return errors.As(err, &ve)
}

// -----------------------------------------------------------------------------
// Rules
// -----------------------------------------------------------------------------

// Patterns mirror the product’s published field contracts exactly.
var (
	reName   = regexp.MustCompile(`^[A-Za-z]+$`)
	reMobile = regexp.MustCompile(`^\d{10}$`)
	reEmail  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	msgLettersOnly   = "Only letters are allowed"
	msgMobile        = "Enter a valid 10-digit number"
	msgEmail         = "Enter a valid email"
	msgEmailRequired = "Email is required"
	msgPassRequired  = "Password is required"
	msgPassShort     = "Password must be at least 6 characters"
	msgPassMismatch  = "Passwords do not match"
)

// -----------------------------------------------------------------------------
// Signup form
// -----------------------------------------------------------------------------

// SignupForm is the typed field set posted by the signup view.
type SignupForm struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	MobileNumber    string `json:"mobileNumber"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateField checks a single field against the form’s current values.
// Empty return means valid.  Used for blur-style incremental validation.
func (f SignupForm) ValidateField(name Field) string {
	switch name {
	case FieldFirstName:
		if !reName.MatchString(f.FirstName) {
			return msgLettersOnly
		}
	case FieldLastName:
		if !reName.MatchString(f.LastName) {
			return msgLettersOnly
		}
	case FieldMobileNumber:
		if !reMobile.MatchString(f.MobileNumber) {
			return msgMobile
		}
	case FieldEmail:
		if !reEmail.MatchString(f.Email) {
			return msgEmail
		}
	case FieldPassword:
		if len(f.Password) < 6 {
			return msgPassShort
		}
	case FieldConfirmPassword:
		if f.ConfirmPassword != f.Password {
			return msgPassMismatch
		}
	}
	return ""
}

// Validate recomputes every field and returns the full ErrorSet.  Submission
// proceeds only when the set is empty.
func (f SignupForm) Validate() ErrorSet {
	errs := make(ErrorSet)
	for _, name := range []Field{
		FieldFirstName, FieldLastName, FieldMobileNumber,
		FieldEmail, FieldPassword, FieldConfirmPassword,
	} {
		if msg := f.ValidateField(name); msg != "" {
			errs[name] = msg
		}
	}
	return errs
}

// -----------------------------------------------------------------------------
// Login form
// -----------------------------------------------------------------------------

// LoginForm is the typed field set posted by the login view.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate recomputes both fields.
func (f LoginForm) Validate() ErrorSet {
	errs := make(ErrorSet)
	switch {
	case f.Email == "":
		errs[FieldEmail] = msgEmailRequired
	case !reEmail.MatchString(f.Email):
		errs[FieldEmail] = msgEmail
	}
	switch {
	case f.Password == "":
		errs[FieldPassword] = msgPassRequired
	case len(f.Password) < 6:
		errs[FieldPassword] = msgPassShort
	}
	return errs
}

// -----------------------------------------------------------------------------
// Reset-password form
// -----------------------------------------------------------------------------

// ResetForm is the typed field set posted by the set-new-password view.
type ResetForm struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks length first, then the match, mirroring the view’s rule
// ordering so the user sees one error at a time.
func (f ResetForm) Validate() ErrorSet {
	errs := make(ErrorSet)
	if len(f.Password) < 6 {
		errs[FieldPassword] = msgPassShort
		return errs
	}
	if f.ConfirmPassword != f.Password {
		errs[FieldConfirmPassword] = msgPassMismatch
	}
	return errs
}
