/*
recurrence.go - Weekly trigger patterns

PURPOSE:
  Represents one compound's weekly schedule (subset of weekdays, time of
  day, occurrences per day) and enumerates or tests occurrences. Pure, no
  I/O, no side effects.

SCHEDULABILITY:
  A recurrence is schedulable iff it has at least one weekday AND a time of
  day AND at least one occurrence per day. An empty weekday set means the
  compound is taken as needed and has no plan; a missing time of day makes
  the recurrence inactive for projection even when days are set.

KNOWN SIMPLIFICATION:
  Multiple intra-day occurrences share the single TimeOfDay; the data model
  cannot express "8am and 8pm" distinctly. OccurrencesPerDay is therefore
  time-agnostic: it weights planned counts but the projector only locates
  the next single trigger.

SEE ALSO:
  - projector.go: Next-occurrence search over schedulable recurrences
  - compliance.go: Planned counts from PlannedBetween
*/
package engine

import "time"

// =============================================================================
// RECURRENCE
// =============================================================================

type Recurrence struct {
	// DaysOfWeek is the set of scheduled weekdays. Empty = as-needed, no plan.
	DaysOfWeek []Weekday

	// TimeOfDay is the wall-clock trigger time. Nil = recurrence inactive
	// for projection even when days are set.
	TimeOfDay *TimeOfDay

	// OccurrencesPerDay is clamped to a minimum of 1 when read.
	OccurrencesPerDay int
}

// PerDay returns the effective occurrences per day, clamped to >= 1.
func (r Recurrence) PerDay() int {
	if r.OccurrencesPerDay < 1 {
		return 1
	}
	return r.OccurrencesPerDay
}

// Schedulable reports whether this recurrence produces planned occurrences:
// non-empty weekday set, a valid time of day, and a positive daily count.
func (r Recurrence) Schedulable() bool {
	return len(r.DaysOfWeek) > 0 && r.TimeOfDay != nil && r.TimeOfDay.Valid()
}

// IsScheduledOn reports whether the date's weekday is in the set.
func (r Recurrence) IsScheduledOn(date time.Time) bool {
	wd := WeekdayOf(date)
	for _, d := range r.DaysOfWeek {
		if d == wd {
			return true
		}
	}
	return false
}

// OccurrencesOn returns the instants scheduled on the given date: PerDay()
// instants, all at TimeOfDay (the model has no distinct intra-day times).
// Empty when the recurrence is not schedulable or the day is not scheduled.
func (r Recurrence) OccurrencesOn(date time.Time) []time.Time {
	if !r.Schedulable() || !r.IsScheduledOn(date) {
		return nil
	}
	at := r.TimeOfDay.At(date)
	occ := make([]time.Time, r.PerDay())
	for i := range occ {
		occ[i] = at
	}
	return occ
}

// PlannedBetween counts scheduled occurrences whose day falls within
// [from, to] inclusive. Zero for non-schedulable recurrences.
func (r Recurrence) PlannedBetween(from, to time.Time) int {
	if !r.Schedulable() {
		return 0
	}
	count := 0
	for day := StartOfDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		if r.IsScheduledOn(day) {
			count += r.PerDay()
		}
	}
	return count
}
