// Package apperr holds the error taxonomy shared by the data layer and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrDuplicateKey is returned when a write violates a uniqueness constraint.
	ErrDuplicateKey = fmt.Errorf("duplicate key: %w", ErrConflict)
)

// ValidationError carries a message plus per-field detail for 400 responses.
type ValidationError struct {
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Details)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError without field detail.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// InvalidField builds a ValidationError pointing at a single field.
func InvalidField(field, message string) error {
	return &ValidationError{
		Message: "Invalid request body",
		Details: map[string]string{field: message},
	}
}

// NotFoundError names the missing (or foreign) resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError for resource, e.g. "Practice set".
func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}
