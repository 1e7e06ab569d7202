package domain

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidID marks an identifier that is not well-formed for the store.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound is returned when a user cannot be located.
	ErrNotFound = errors.New("not found")
	// ErrStore wraps failures of the underlying store.
	ErrStore = errors.New("store failure")
)

// Error carries a client-safe message next to its kind and, for store
// failures, the underlying cause. errors.Is matches both Kind and Cause.
type Error struct {
	Kind    error
	Message string
	Op      string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func validationError(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

func storeError(op, message string, cause error) *Error {
	return &Error{Kind: ErrStore, Message: message, Op: op, Cause: cause}
}
