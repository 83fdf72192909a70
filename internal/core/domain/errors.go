package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access forbidden")
	ErrNoteNotFound       = errors.New("note not found")
)

// ValidationError carries the client-facing message for a rejected input.
type ValidationError struct {
	Message string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// PolicyError is returned when the caller is not allowed to perform Action on a note.
type PolicyError struct {
	Action string
}

func (e *PolicyError) Error() string { return "Not allowed to " + e.Action + " this note" }

func (e *PolicyError) Unwrap() error { return ErrForbidden }
