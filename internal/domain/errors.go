package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input. Nothing is persisted.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing or soft-deleted resource.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateAttempt is returned when a user already has an attempt for a quiz.
	ErrDuplicateAttempt = errors.New("attempt already submitted for this quiz")
	// ErrForbidden marks a grade mismatch between a user and the content requested.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError describes a rejected input value.
type ValidationError struct {
	Field      string
	QuestionID string
	Value      string
	Reason     string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	switch {
	case e.QuestionID != "":
		return fmt.Sprintf("invalid answer %q for question %s: %s", e.Value, e.QuestionID, e.Reason)
	case e.Field != "" && e.Value != "":
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError names the resource that could not be found.
type NotFoundError struct {
	Resource string
	ID       string
}

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
