// Package apperror classifies domain failures so a single HTTP translator
// can map them to status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrGone       = errors.New("gone")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

// AppError carries a kind sentinel, a client-facing message and an
// optional field name.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation reports malformed input. Field may be empty.
func Validation(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

// NotFound reports a missing resource.
func NotFound(resource string) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

// Gone reports a resource that exists but is no longer actionable.
func Gone(message string) *AppError {
	return &AppError{Err: ErrGone, Message: message}
}

// Forbidden reports an actor without rights on the resource.
func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

// Conflict reports a state clash such as a duplicate.
func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// Message returns the client-facing message of err when it is an AppError.
func Message(err error) (string, string, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message, ae.Field, true
	}
	return "", "", false
}
