package status

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Update and Delete for unknown ids.
	ErrNotFound = errors.New("status not found")
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid status")
)

// ValidationError names the first missing or empty field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
