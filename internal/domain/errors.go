package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound indicates the hosted session is missing or not visible.
	ErrSessionNotFound = errors.New("session not found")
	// ErrForbidden is returned when the requester is not the owner/host.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized is returned when no valid credential accompanies a request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionInactive is returned when submitting to a stopped session.
	ErrSessionInactive = errors.New("quiz no longer active")
	// ErrSessionNotStarted is returned before the session's start time.
	ErrSessionNotStarted = errors.New("quiz not started yet")
	// ErrSessionEnded is returned after the session's end time.
	ErrSessionEnded = errors.New("quiz ended")
	// ErrAttemptLimit is returned when the per-identity attempt cap is reached.
	ErrAttemptLimit = errors.New("maximum attempts exceeded")
)

// ValidationError marks a malformed or incomplete request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ActiveSessionError signals that a quiz already has an active session.
// It carries the existing session id so callers can resume instead of
// re-hosting.
type ActiveSessionError struct {
	SessionID string
}

func (e *ActiveSessionError) Error() string {
	return "quiz is already being hosted"
}

// GenerationError wraps any AI-generation failure together with the raw
// diagnostic payload (prompt response, upstream error body).
type GenerationError struct {
	Reason string
	Raw    string
}

func (e *GenerationError) Error() string { return e.Reason }
