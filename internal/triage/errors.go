package triage

import (
	"errors"
	"fmt"
)

// ValidationError is a recoverable, caller-caused rule violation: a missing
// mandatory field, a negative vital sign, a doctor with an active case, an
// empty queue. The message is surfaced to the caller verbatim.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Message }

// validationf builds a ValidationError with a formatted message.
func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError, so the
// transport layer can map it to a 4xx response instead of a 500.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
