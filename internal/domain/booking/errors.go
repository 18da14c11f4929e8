package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the booking engine. Callers distinguish them with
// errors.Is.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("appointment not found")
	ErrTooEarly          = errors.New("appointment day has not elapsed yet")
	ErrPersistence       = errors.New("persistence failure")
)

// ValidationError carries every field violation found in a booking request,
// so the client gets complete feedback in one round trip. It matches
// ErrInvalidRequest under errors.Is.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s", strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }
