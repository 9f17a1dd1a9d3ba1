package booking

import (
	"fmt"
	"strings"
	"time"
)

// Selection is a validated booking request.
type Selection struct {
	VenueID  string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
}

// FieldError is a validation failure on one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is either Ok(Selection) or Err(field errors).
type Result struct {
	value  Selection
	errors []FieldError
}

// Ok wraps a valid selection.
func Ok(sel Selection) Result {
	return Result{value: sel}
}

// Err wraps one or more field errors.
func Err(errs ...FieldError) Result {
	return Result{errors: errs}
}

// Ok reports whether validation passed.
func (r Result) Ok() bool {
	return len(r.errors) == 0
}

// Value returns the selection. Only meaningful when Ok is true.
func (r Result) Value() Selection {
	return r.value
}

// Errors returns the field errors.
func (r Result) Errors() []FieldError {
	return r.errors
}

// Err converts a failed result into a *ValidationError, or nil.
func (r Result) Err() error {
	if r.Ok() {
		return nil
	}
	return &ValidationError{Fields: r.errors}
}

// ValidateSelection checks the selection against the venue's guest limit.
// A maxGuests of zero or less means no upper limit.
func ValidateSelection(sel Selection, maxGuests int) Result {
	var errs []FieldError

	if sel.CheckIn.IsZero() {
		errs = append(errs, FieldError{Field: "checkIn", Message: "Please add a check-in date"})
	}
	if sel.CheckOut.IsZero() {
		errs = append(errs, FieldError{Field: "checkOut", Message: "Please add a check-out date"})
	}
	if !sel.CheckIn.IsZero() && !sel.CheckOut.IsZero() && !sel.CheckOut.After(sel.CheckIn) {
		errs = append(errs, FieldError{Field: "checkOut", Message: "Check-out must be at least 1 night after check-in"})
	}
	if sel.Guests < 1 {
		errs = append(errs, FieldError{Field: "guests", Message: "Minimum number of guests is 1"})
	}
	if maxGuests > 0 && sel.Guests > maxGuests {
		errs = append(errs, FieldError{Field: "guests", Message: fmt.Sprintf("Maximum number of guests is %d", maxGuests)})
	}

	if len(errs) > 0 {
		return Err(errs...)
	}
	return Ok(sel)
}

// ValidationError carries the field errors of a rejected submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
