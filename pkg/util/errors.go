// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure kinds the bridge distinguishes
var (
	ErrNotFound         = errors.New("resource not found")
	ErrNoACS            = errors.New("no ACS server configured")
	ErrRemoteFailed     = errors.New("ACS request failed")
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidState     = errors.New("operation not allowed in current state")
)

// RemoteError collapses transport failures and non-2xx NBI responses into a
// single error kind. Callers never need to distinguish the two to behave
// safely; Message carries the human-readable detail.
type RemoteError struct {
	Operation string
	Message   string
}

func (e *RemoteError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("ACS %s failed: %s", e.Operation, e.Message)
	}
	return "ACS request failed: " + e.Message
}

func (e *RemoteError) Unwrap() error {
	return ErrRemoteFailed
}

// NewRemoteError creates a remote error for an NBI operation
func NewRemoteError(operation, message string) *RemoteError {
	return &RemoteError{Operation: operation, Message: message}
}

// StateError represents an operation attempted from a disallowed status
type StateError struct {
	Operation string
	Resource  string
	Status    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s %s in status %q", e.Operation, e.Resource, e.Status)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

// NewStateError creates a state error
func NewStateError(operation, resource, status string) *StateError {
	return &StateError{Operation: operation, Resource: resource, Status: status}
}

// NotFoundError identifies a missing record by kind and id
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
