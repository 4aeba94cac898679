package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by services and repositories. Controllers map them to HTTP status codes.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrCapacityExceeded = errors.New("event capacity reached")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// ValidationError lists the field problems of a rejected input. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Problems []string
}

// NewValidationError returns a ValidationError for the given messages.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
