/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The engine almost never errors: malformed DOMAIN data (missing dose
  fields, empty schedules, zero durations) degrades to unknown/zero/none
  results, because it originates from user-entered forms where partial
  states are expected. The only errors here are programming
  contract violations and collaborator-facing conditions the store and
  API layers map to HTTP statuses.

USAGE:
  if errors.Is(err, engine.ErrCourseNotFound) { ... }

SEE ALSO:
  - facade.go: The nil-argument contract
  - api/handlers.go: Maps these to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNilCourse is returned when a nil course is passed to the engine.
	// This is a programming error, not a data error.
	ErrNilCourse = errors.New("nil course")

	// ErrCourseNotFound is returned by stores when a course id is unknown.
	ErrCourseNotFound = errors.New("course not found")

	// ErrDuplicateAction is returned when appending an action whose id
	// already exists. Expected behavior for retries.
	ErrDuplicateAction = errors.New("duplicate action id")

	// ErrInvalidTransition is returned for disallowed course status changes
	// (e.g. reactivating a cancelled course).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrImmutableLog is returned on any attempt to update or delete a
	// logged action. Corrections are new facts, not edits.
	ErrImmutableLog = errors.New("action log is append-only")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError details a rejected course status change.
type TransitionError struct {
	CourseID CourseID
	From     CourseStatus
	To       CourseStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("course %s: cannot transition %s -> %s", e.CourseID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDuplicateAction) ||
		errors.Is(err, ErrImmutableLog)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound)
}
