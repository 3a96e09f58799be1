/*
projector.go - Next-occurrence projection

PURPOSE:
  Given a course's (compound, recurrence) pairs and a reference instant,
  finds the soonest strictly-future occurrence per administration class.
  This is the "next injection in 23h" number every consumer screen shows.

ALGORITHM:
  For each matching compound with a schedulable recurrence, scan the 7
  calendar days starting today (today first). The first scheduled weekday
  whose trigger instant is still in the future yields the candidate; a
  trigger that has already passed today advances to the next scheduled
  weekday, up to the same weekday next week. Across compounds, the
  smallest non-negative wait wins; ties go to declaration order.

EDGE CASE POLICY:
  A recurrence whose only scheduled weekday is today with a time already
  passed rolls over to the same weekday NEXT week - never today, even when
  OccurrencesPerDay > 1. The projector locates the next single trigger,
  not each of N intra-day triggers.

SEE ALSO:
  - recurrence.go: Schedulability and per-day occurrence rules
  - facade.go: Aggregates FindNext across all classes
*/
package engine

import "time"

// =============================================================================
// NEXT OCCURRENCE
// =============================================================================

// NextOccurrence is the soonest future scheduled trigger for one
// administration class.
type NextOccurrence struct {
	CompoundKey   CompoundKey
	CompoundLabel string
	Class         AdministrationClass
	OccursAt      time.Time
	ETA           ETA
}

// =============================================================================
// PROJECTOR
// =============================================================================

// projectionHorizonDays bounds the weekday scan: today plus seven more
// days covers rolling over to the same weekday next week.
const projectionHorizonDays = 7

// FindNext returns the soonest strictly-future occurrence among the
// course's compounds of the given class, or nil when no compound of that
// class has a schedulable recurrence. Deterministic: equal candidate
// instants resolve to the compound declared first.
func FindNext(course *Course, class AdministrationClass, now time.Time) (*NextOccurrence, error) {
	if course == nil {
		return nil, ErrNilCourse
	}

	var best *NextOccurrence
	for _, compound := range course.Compounds {
		if compound.Class != class {
			continue
		}
		rec, ok := course.RecurrenceFor(compound.Key)
		if !ok || !rec.Schedulable() {
			continue
		}

		at, ok := nextTrigger(rec, now)
		if !ok {
			continue
		}
		if best == nil || at.Before(best.OccursAt) {
			best = &NextOccurrence{
				CompoundKey:   compound.Key,
				CompoundLabel: compound.Label,
				Class:         class,
				OccursAt:      at,
				ETA:           ETAUntil(now, at),
			}
		}
	}
	return best, nil
}

// nextTrigger scans today plus the next 7 days for the first scheduled
// weekday whose trigger instant is strictly after now. Strictly-after
// guarantees a trigger exactly at now is never returned (no zero or
// negative waits), so "now == today's time" rolls forward.
func nextTrigger(rec Recurrence, now time.Time) (time.Time, bool) {
	today := StartOfDay(now)
	for d := 0; d <= projectionHorizonDays; d++ {
		day := today.AddDate(0, 0, d)
		if !rec.IsScheduledOn(day) {
			continue
		}
		at := rec.TimeOfDay.At(day)
		if at.After(now) {
			return at, true
		}
	}
	return time.Time{}, false
}
