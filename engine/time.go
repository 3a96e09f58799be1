package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// WEEKDAY - Closed 7-value enum, ISO numbering (Mon=1..Sun=7)
// =============================================================================

// Weekday uses ISO numbering to avoid locale-dependent "first day of week"
// ambiguity. External representations using 0=Sunday must be translated at
// the boundary (see course.Factory), never inside the engine.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf translates a time.Weekday (0=Sunday) to the ISO enum.
func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// Valid reports whether the value is one of the seven ISO weekdays.
func (w Weekday) Valid() bool { return w >= Monday && w <= Sunday }

func (w Weekday) String() string {
	names := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return names[w-1]
}

// =============================================================================
// TIME OF DAY - Wall-clock trigger time within a scheduled day
// =============================================================================

type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// Valid reports whether the time is a real wall-clock time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// At constructs the instant at this time of day on the given date,
// preserving the date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// =============================================================================
// DAY HELPERS
// =============================================================================

// StartOfDay truncates an instant to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns whole days elapsed from one instant to another,
// floored. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := int(d.Hours() / 24)
	if d < 0 && d%(24*time.Hour) != 0 {
		days-- // floor, not truncate, for negative spans
	}
	return days
}

// =============================================================================
// ETA - Duration until an occurrence, decomposed for display
// =============================================================================

// ETA is the time remaining until a scheduled occurrence, decomposed into
// whole hours and minutes. Hours are omitted from display when zero.
type ETA struct {
	Hours   int
	Minutes int
}

// ETAUntil computes the ETA from now to a future instant. The result is
// never negative; callers guarantee at is not in the past.
func ETAUntil(now, at time.Time) ETA {
	d := at.Sub(now)
	if d < 0 {
		d = 0
	}
	return ETA{
		Hours:   int(d / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
	}
}

func (e ETA) String() string {
	if e.Hours == 0 {
		return fmt.Sprintf("%dm", e.Minutes)
	}
	return fmt.Sprintf("%dh %dm", e.Hours, e.Minutes)
}
