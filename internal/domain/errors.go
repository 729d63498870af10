package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStudentNotFound is returned when a student id or email resolves to nothing.
	ErrStudentNotFound = errors.New("student not found")
	// ErrTeacherNotFound is returned when a teacher id or email resolves to nothing.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrGameNotFound indicates the named game is not in the catalog.
	ErrGameNotFound = errors.New("game not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates a quiz attempt id resolves to nothing.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrAssignmentNotFound indicates an assignment id resolves to nothing.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrNotRanked is returned when a student has no leaderboard entry yet.
	ErrNotRanked = errors.New("student not on leaderboard")

	// ErrDuplicateEmail rejects registration with an email already in use.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrAttemptCompleted rejects submission to a terminal quiz attempt.
	ErrAttemptCompleted = errors.New("quiz attempt already completed")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrTeacherNotFound) ||
		errors.Is(err, ErrGameNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrNotRanked)
}

// IsConflict reports whether err is one of the conflict sentinels.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrAttemptCompleted)
}

// FieldError pins a validation failure to a specific request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a request before any state mutation. Fields is
// optional detail for the client.
type ValidationError struct {
	Msg    string       `json:"message"`
	Fields []FieldError `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return e.Msg + " (" + strings.Join(parts, "; ") + ")"
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(msg string, fields ...FieldError) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
