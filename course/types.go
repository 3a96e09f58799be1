// Package course implements the course domain around the engine: status
// lifecycle, free-text normalization at the data-entry boundary, and
// deserialization of stored course records into typed engine structures.
package course

import (
	"github.com/doseplan/course-engine/engine"
)

// =============================================================================
// STATUS LIFECYCLE
// =============================================================================

// transitions lists the allowed status changes. Completed and Cancelled
// are terminal.
var transitions = map[engine.CourseStatus][]engine.CourseStatus{
	engine.StatusActive: {engine.StatusPaused, engine.StatusCompleted, engine.StatusCancelled},
	engine.StatusPaused: {engine.StatusActive, engine.StatusCompleted, engine.StatusCancelled},
}

// CanTransition reports whether a status change is allowed.
func CanTransition(from, to engine.CourseStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of the course with the new status, or a
// TransitionError when the change is not allowed. The input course is
// never mutated; the engine and its callers share read-only courses.
func Transition(c *engine.Course, to engine.CourseStatus) (*engine.Course, error) {
	if c == nil {
		return nil, engine.ErrNilCourse
	}
	if !CanTransition(c.Status, to) {
		return nil, &engine.TransitionError{CourseID: c.ID, From: c.Status, To: to}
	}
	next := *c
	next.Status = to
	return &next, nil
}
