/*
Package store defines the persistence interfaces for courses and the
action log.

PURPOSE:
  The engine is pure and reads only in-memory structures; persistence is
  an external collaborator specified at this interface. Courses are
  stored as flat records (course.Record) with JSON-encoded compounds and
  schedule columns - deserialization into typed structures is the
  caller's job via course.ParseCourse, not the store's.

APPEND-ONLY ACTION LOG:
  LoggedActions are immutable facts. Implementations expose no update or
  delete for actions; a mistaken entry is corrected by logging a new
  fact. This mirrors the compliance contract: the log is ground truth of
  what actually happened.

IMPLEMENTATIONS:
  store/sqlite: SQLite-backed, WAL mode (production/demo)
  store/memory: In-memory (tests, dev)

SEE ALSO:
  - course/factory.go: Record <-> typed Course conversion
  - engine/compliance.go: Consumes the action log
*/
package store

import (
	"context"
	"time"

	"github.com/doseplan/course-engine/course"
	"github.com/doseplan/course-engine/engine"
)

// CourseStore persists course records.
type CourseStore interface {
	// SaveCourse inserts or replaces a course record.
	SaveCourse(ctx context.Context, rec course.Record) error

	// GetCourse returns the record, or nil when the id is unknown.
	GetCourse(ctx context.Context, id string) (*course.Record, error)

	// ListCourses returns all course records.
	ListCourses(ctx context.Context) ([]course.Record, error)

	// DeleteCourse removes a course and its actions. Course deletion is
	// the one explicitly destructive operation in the system.
	DeleteCourse(ctx context.Context, id string) error
}

// ActionLog is the append-only record of actual administrations.
type ActionLog interface {
	// Append adds one action. Fails with engine.ErrDuplicateAction when
	// the id already exists (safe to retry).
	Append(ctx context.Context, a engine.LoggedAction) error

	// Actions returns a course's actions in chronological order.
	Actions(ctx context.Context, courseID engine.CourseID) ([]engine.LoggedAction, error)

	// ActionsInRange returns a course's actions with timestamp in
	// [from, to], chronological.
	ActionsInRange(ctx context.Context, courseID engine.CourseID, from, to time.Time) ([]engine.LoggedAction, error)
}

// Store is the full persistence surface the API layer wires up.
type Store interface {
	CourseStore
	ActionLog
}
