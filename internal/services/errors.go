package services

import (
	"errors"
	"fmt"

	"judicial-archive/internal/models"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrCorruptReference    = errors.New("corrupt reference")
	ErrUserHasDocuments    = errors.New("user has documents")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrAttachmentsDisabled = errors.New("attachment storage not configured")
)

// CorruptReferenceError reports an entity whose parent or creator no longer
// resolves.
type CorruptReferenceError struct {
	Entity  string
	ID      string
	Missing string
}

func (e *CorruptReferenceError) Error() string {
	return fmt.Sprintf("%s %s: missing %s", e.Entity, e.ID, e.Missing)
}

func (e *CorruptReferenceError) Unwrap() error {
	return ErrCorruptReference
}

// TransitionError is returned when the enforced workflow forbids a status
// change.
type TransitionError struct {
	From, To models.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s to %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
