package application

import (
	"errors"
	"fmt"

	"github.com/kavia-common/surgical-schedule-management-system-1461-1484/internal/scheduler"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("application: not found")

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ConflictError is returned when a reservation cannot be committed because it
// collides with existing state. It carries the full conflict list so callers
// can present every reason at once.
type ConflictError struct {
	Conflicts []scheduler.Conflict
}

// Error implements the error interface.
func (c *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflicts detected: %d", len(c.Conflicts))
}
