package persistence

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a unique constraint would be violated.
	ErrDuplicate = errors.New("record already exists")
	// ErrConstraintViolation indicates a stored value failed a CHECK or NOT
	// NULL constraint.
	ErrConstraintViolation = errors.New("constraint violation")
)
