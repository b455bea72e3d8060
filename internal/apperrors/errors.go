// Package apperrors defines the error taxonomy shared by services and
// handlers: validation, authorization, not-found, and state-conflict
// failures. Business-rule violations are recoverable by the caller;
// persistence failures are wrapped and surfaced as-is.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist or belongs to
// another tenant.
var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// ValidationError reports malformed or missing input. No state is mutated
// when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StateConflictError reports an operation attempted from a status that does
// not allow it. CurrentStatus is always populated so callers can explain
// the conflict to a user.
type StateConflictError struct {
	Operation     string
	CurrentStatus string
	Detail        string
}

func (e *StateConflictError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("cannot %s a loan with status: %s", e.Operation, e.CurrentStatus)
}

// StateConflict builds a StateConflictError with the default message.
func StateConflict(operation, currentStatus string) error {
	return &StateConflictError{Operation: operation, CurrentStatus: currentStatus}
}

// GuardFailed builds a StateConflictError carrying a guard-specific message,
// e.g. "2 guarantor(s) have not yet accepted".
func GuardFailed(operation, currentStatus, detail string) error {
	return &StateConflictError{Operation: operation, CurrentStatus: currentStatus, Detail: detail}
}

// AuthorizationError reports an actor lacking the capability for an action.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not permitted to %s", e.Action)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateConflict reports whether err is a StateConflictError.
func IsStateConflict(err error) bool {
	var se *StateConflictError
	return errors.As(err, &se)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
