package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned for missing records and for records owned by
	// another user; callers cannot tell the two apart.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthenticated indicates the request carries no valid user identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrSignupNotAllowed indicates the email is not on the allow-list.
	ErrSignupNotAllowed = errors.New("email is not allowed to register")

	// ErrDuplicate is returned by stores when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")

	// ErrTransitionNotImplemented marks lifecycle transitions the system does
	// not model yet, such as ending a pregnancy.
	ErrTransitionNotImplemented = errors.New("transition not implemented")
)

// ValidationError reports a rejected input before any write happens.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidEnumValue builds the error returned when value is outside the closed
// set for field.
func InvalidEnumValue(field, value string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: "not an accepted value"}
}

// MissingField builds the error for an absent required field.
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

// Invalid builds a generic validation error.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError wraps a failure reported by the data store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore wraps err in a StoreError unless it is nil or already a domain
// sentinel that callers match on.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// PartialCompletionError is returned when a multi-step operation failed
// after some of its writes were already persisted and the store could not
// roll them back.
type PartialCompletionError struct {
	Operation string
	RecordID  string
	Completed []string
	Pending   []string
	Err       error
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("%s partially applied (done: %s; pending: %s): %v",
		e.Operation, strings.Join(e.Completed, ", "), strings.Join(e.Pending, ", "), e.Err)
}

func (e *PartialCompletionError) Unwrap() error { return e.Err }
