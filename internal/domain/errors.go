package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// ErrSnapshotNotFound is returned when no graph snapshot exists for the
// requested session and stage.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ValidationError is fatal and raised before any stage work begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ProviderError wraps a failed or timed-out external provider call.
type ProviderError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("provider %s timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError marks unparseable provider output. Field detection
// recovers from it with a documented default; other callers surface it.
type MalformedResponseError struct {
	Provider string
	Raw      string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// StageError is any unrecovered failure inside a stage. It is recorded in
// the stage's execution context and propagated to the caller.
type StageError struct {
	Stage int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s) failed: %v", e.Stage, StageName(e.Stage), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
