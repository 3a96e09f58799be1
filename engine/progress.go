package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROGRESS - Elapsed/remaining-time view of a course
// =============================================================================

// ProgressSnapshot is the computed (never persisted) progress of a course
// at a given now. All fields are non-negative; PercentComplete is clamped
// to [0, 100]. Callers needing overdue detection compare DaysPassed to
// TotalDays directly rather than relying on the clamped percentage.
type ProgressSnapshot struct {
	DaysPassed      int
	TotalDays       int
	DaysLeft        int
	PercentComplete int
}

// Progress computes the elapsed-time snapshot for a course. A course
// without a start date reports all zeros. Duration falls back to the
// 12-week default when unset or non-positive. Never returns negative
// values; elapsed time past the end reports 100%, not more.
func Progress(course *Course, now time.Time) (ProgressSnapshot, error) {
	if course == nil {
		return ProgressSnapshot{}, ErrNilCourse
	}
	if course.StartDate.IsZero() {
		return ProgressSnapshot{}, nil
	}

	total := course.TotalDays()
	passed := DaysBetween(course.StartDate, now)
	if passed < 0 {
		passed = 0
	}

	percent := int(decimal.NewFromInt(int64(passed * 100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).IntPart())
	if percent > 100 {
		percent = 100
	}

	left := total - passed
	if left < 0 {
		left = 0
	}

	return ProgressSnapshot{
		DaysPassed:      passed,
		TotalDays:       total,
		DaysLeft:        left,
		PercentComplete: percent,
	}, nil
}
