package services

import (
	"errors"
	"fmt"
)

// Shared service error taxonomy, mapped onto HTTP statuses at the
// handler layer. Convention is normalized across every endpoint:
// ErrUnauthorized means no session, ErrForbidden means a session that
// does not own the resource.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunFailed is returned when the remote assistant run ends in a
	// terminal failure state.
	ErrRunFailed = errors.New("assistant run failed")
)

// RunInProgressError signals that the bounded wait on a remote run
// elapsed before the run reached a terminal state. It carries the ids
// the client needs to re-poll.
type RunInProgressError struct {
	ThreadID string
	RunID    string
}

func (e *RunInProgressError) Error() string {
	return fmt.Sprintf("assistant run %s still processing on thread %s", e.RunID, e.ThreadID)
}
