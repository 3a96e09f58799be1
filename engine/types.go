/*
Package engine provides the course schedule and compliance engine.

PURPOSE:
  This package contains the pure computation core for multi-compound dosing
  courses: projecting the next scheduled administration, normalizing
  heterogeneous dose representations into comparable milligram quantities,
  computing course progress, and scoring planned-vs-actual compliance over
  a trailing window.

KEY CONCEPTS IN THIS FILE (types.go):
  - Course: The aggregate root (compounds + per-compound weekly schedule)
  - Compound: One prescribed substance with a dose spec and a class
  - LoggedAction: An immutable fact recording an actual administration
  - AdministrationClass / CourseStatus: Closed enums assigned at the
    data-entry boundary, never re-derived from free text at read time

DESIGN PRINCIPLES:
  1. Purity: No I/O, no wall clock. Every function takes an explicit "now".
  2. Precision: Uses decimal.Decimal for dose quantities to avoid
     floating-point errors in sums and conversions.
  3. Degradation over failure: Malformed domain data (missing dose fields,
     empty schedules, zero durations) degrades to a well-defined
     unknown/zero/none result. Only nil arguments are contract violations.
  4. Immutability: The engine only reads courses and action logs; it never
     mutates external state.

USAGE:
  desc, err := engine.Describe(course, actions, now)
  if err != nil { ... }
  fmt.Println(desc.Progress.PercentComplete)

SEE ALSO:
  - dose.go: Dose variants and milligram normalization
  - recurrence.go: Weekly trigger patterns
  - facade.go: Describe, the single public entry point
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CourseID string
type CompoundKey string
type ActionID string

// =============================================================================
// ADMINISTRATION CLASS - Route/form category, assigned once at the boundary
// =============================================================================

// AdministrationClass is the closed route/form enum. Free-text form strings
// (user-entered, possibly localized) are mapped to a class once at
// deserialization time; the engine never substring-matches text.
type AdministrationClass string

const (
	ClassInjection AdministrationClass = "injection"
	ClassTablet    AdministrationClass = "tablet"
	ClassCapsule   AdministrationClass = "capsule"
	ClassGel       AdministrationClass = "gel"
	ClassPatch     AdministrationClass = "patch"

	// ClassOther is the pass-through for unrecognized form strings. Compounds
	// of this class still participate in compliance (their schedules are real
	// plans) but only surface from FindNext when queried explicitly.
	ClassOther AdministrationClass = "other"
)

// Oral reports whether the class is dosed as discrete units (count x mg/unit).
func (c AdministrationClass) Oral() bool {
	return c == ClassTablet || c == ClassCapsule
}

// Classes lists every concrete administration class, in display order.
func Classes() []AdministrationClass {
	return []AdministrationClass{ClassInjection, ClassTablet, ClassCapsule, ClassGel, ClassPatch, ClassOther}
}

// =============================================================================
// COURSE STATUS
// =============================================================================

type CourseStatus string

const (
	StatusActive    CourseStatus = "active"
	StatusPaused    CourseStatus = "paused"
	StatusCompleted CourseStatus = "completed"
	StatusCancelled CourseStatus = "cancelled"
)

// =============================================================================
// COMPOUND - One prescribed substance within a course
// =============================================================================

type Compound struct {
	Key   CompoundKey
	Label string
	Class AdministrationClass
	Dose  Dose // nil when no dose has been entered yet
}

// =============================================================================
// COURSE - The aggregate root
// =============================================================================

// DefaultDurationWeeks is used when a course's duration is unset or invalid.
const DefaultDurationWeeks = 12

// Course is the static configuration the engine reads. The engine never
// mutates a Course; lifecycle transitions live in the course package.
type Course struct {
	ID            CourseID
	Title         string
	StartDate     time.Time // start-of-day local time; zero = not set
	DurationWeeks int
	Status        CourseStatus
	Compounds     []Compound
	Schedule      map[CompoundKey]Recurrence
}

// Duration returns the course duration in weeks, falling back to the
// default when the stored value is unset or non-positive.
func (c *Course) Duration() int {
	if c.DurationWeeks <= 0 {
		return DefaultDurationWeeks
	}
	return c.DurationWeeks
}

// TotalDays returns the course length in days.
func (c *Course) TotalDays() int { return c.Duration() * 7 }

// EndDate returns the exclusive end of the course. Derived, never stored.
// Zero when StartDate is not set.
func (c *Course) EndDate() time.Time {
	if c.StartDate.IsZero() {
		return time.Time{}
	}
	return c.StartDate.AddDate(0, 0, c.TotalDays())
}

// RecurrenceFor returns the compound's recurrence and whether one exists.
func (c *Course) RecurrenceFor(key CompoundKey) (Recurrence, bool) {
	r, ok := c.Schedule[key]
	return r, ok
}

// =============================================================================
// LOGGED ACTION - Immutable fact of what actually happened
// =============================================================================

// LoggedAction records one actual administration. Append-only: corrections
// are new facts, never edits. Compliance treats these as ground truth,
// independent of what was planned.
type LoggedAction struct {
	ID       ActionID
	CourseID CourseID

	// CompoundKey is empty when the log entry was recorded against a class
	// only (older entries predate per-compound logging).
	CompoundKey CompoundKey

	Class     AdministrationClass
	Timestamp time.Time

	// Quantity is the normalized mg (or unit count for orals without a known
	// mg/unit). Zero when the caller could not compute one.
	Quantity decimal.Decimal
}
