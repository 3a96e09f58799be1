/*
facade.go - The single public entry point

PURPOSE:
  Composes the four policies (progress, next-occurrence projection,
  compliance, dose normalization) into one call. Every consumer -
  dashboard, course detail, course list - calls Describe instead of
  re-deriving the policies, so they can evolve without call-site churn.

CONTRACT:
  Pure and idempotent: identical (course, log, now) inputs yield
  structurally identical output. The engine never reads the wall clock;
  "now" is always the explicit parameter. Recomputation from scratch is
  the specified behavior - callers re-invoke Describe on every refresh
  tick or data mutation, which is cheap (bounded by compounds x 7 days).

SEE ALSO:
  - progress.go, projector.go, compliance.go: The composed policies
*/
package engine

import "time"

// =============================================================================
// COURSE DESCRIPTION - The composed read-only projection
// =============================================================================

// CourseDescription is everything a consumer screen needs for one course
// at one instant.
type CourseDescription struct {
	Progress ProgressSnapshot

	// NextByClass holds the soonest future occurrence per administration
	// class; classes with no schedulable recurrence are absent.
	NextByClass map[AdministrationClass]NextOccurrence

	// Compliance covers the trailing 7-day window ending at now.
	Compliance ComplianceReport
}

// =============================================================================
// FACADE
// =============================================================================

// Describe computes the full projection for a course against its action
// log at the given instant. A nil course is a contract violation; a nil
// log is an empty log. Everything else degrades per the component rules.
func Describe(course *Course, log []LoggedAction, now time.Time) (*CourseDescription, error) {
	progress, err := Progress(course, now)
	if err != nil {
		return nil, err
	}

	nextByClass := make(map[AdministrationClass]NextOccurrence)
	for _, class := range Classes() {
		next, err := FindNext(course, class, now)
		if err != nil {
			return nil, err
		}
		if next != nil {
			nextByClass[class] = *next
		}
	}

	compliance, err := Compliance(course, log, TrailingWindow(now, DefaultComplianceWindowDays))
	if err != nil {
		return nil, err
	}

	return &CourseDescription{
		Progress:    progress,
		NextByClass: nextByClass,
		Compliance:  compliance,
	}, nil
}
