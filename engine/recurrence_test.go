package engine_test

import (
	"testing"
	"time"

	"github.com/doseplan/course-engine/engine"
)

func tod(h, m int) *engine.TimeOfDay { return &engine.TimeOfDay{Hour: h, Minute: m} }

// =============================================================================
// SCHEDULABILITY TESTS
// =============================================================================

func TestRecurrence_Schedulable(t *testing.T) {
	cases := []struct {
		name string
		rec  engine.Recurrence
		want bool
	}{
		{
			"days and time present",
			engine.Recurrence{DaysOfWeek: []engine.Weekday{engine.Monday}, TimeOfDay: tod(9, 0)},
			true,
		},
		{
			"empty days is as-needed",
			engine.Recurrence{TimeOfDay: tod(9, 0)},
			false,
		},
		{
			"missing time of day",
			engine.Recurrence{DaysOfWeek: []engine.Weekday{engine.Monday}},
			false,
		},
		{
			"invalid time of day",
			engine.Recurrence{DaysOfWeek: []engine.Weekday{engine.Monday}, TimeOfDay: &engine.TimeOfDay{Hour: 24}},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.rec.Schedulable() != tc.want {
				t.Errorf("expected Schedulable=%v", tc.want)
			}
		})
	}
}

func TestRecurrence_PerDay_ClampsToOne(t *testing.T) {
	for _, raw := range []int{-3, 0, 1, 2} {
		rec := engine.Recurrence{OccurrencesPerDay: raw}
		want := raw
		if want < 1 {
			want = 1
		}
		if rec.PerDay() != want {
			t.Errorf("OccurrencesPerDay=%d: expected PerDay %d, got %d", raw, want, rec.PerDay())
		}
	}
}

// =============================================================================
// OCCURRENCE ENUMERATION TESTS
// =============================================================================

func TestRecurrence_OccurrencesOn(t *testing.T) {
	// GIVEN: Mon/Thu at 09:00, twice a day
	rec := engine.Recurrence{
		DaysOfWeek:        []engine.Weekday{engine.Monday, engine.Thursday},
		TimeOfDay:         tod(9, 0),
		OccurrencesPerDay: 2,
	}

	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// WHEN: asking for a scheduled day
	occ := rec.OccurrencesOn(monday)

	// THEN: PerDay instants, all at 09:00
	if len(occ) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occ))
	}
	for _, at := range occ {
		if at.Hour() != 9 || at.Minute() != 0 {
			t.Errorf("expected 09:00 instant, got %v", at)
		}
	}

	// AND: an unscheduled day yields none
	tuesday := monday.AddDate(0, 0, 1)
	if got := rec.OccurrencesOn(tuesday); len(got) != 0 {
		t.Errorf("expected no occurrences on Tuesday, got %d", len(got))
	}
}

func TestRecurrence_PlannedBetween(t *testing.T) {
	// 2024-01-01 (Mon) through 2024-01-07 (Sun): one full week.
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC)

	cases := []struct {
		name string
		rec  engine.Recurrence
		want int
	}{
		{
			"two days once each",
			engine.Recurrence{DaysOfWeek: []engine.Weekday{engine.Monday, engine.Thursday}, TimeOfDay: tod(9, 0)},
			2,
		},
		{
			"daily twice a day",
			engine.Recurrence{
				DaysOfWeek: []engine.Weekday{
					engine.Monday, engine.Tuesday, engine.Wednesday, engine.Thursday,
					engine.Friday, engine.Saturday, engine.Sunday,
				},
				TimeOfDay:         tod(8, 30),
				OccurrencesPerDay: 2,
			},
			14,
		},
		{
			"empty weekday set plans nothing",
			engine.Recurrence{TimeOfDay: tod(9, 0)},
			0,
		},
		{
			"no time of day plans nothing",
			engine.Recurrence{DaysOfWeek: []engine.Weekday{engine.Monday}},
			0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.rec.PlannedBetween(from, to); got != tc.want {
				t.Errorf("expected %d planned, got %d", tc.want, got)
			}
		})
	}
}

func TestRecurrence_PlannedBetween_PartialDayBounds(t *testing.T) {
	// The window starts mid-Monday; Monday still counts because planning is
	// day-granular, not instant-granular.
	rec := engine.Recurrence{DaysOfWeek: []engine.Weekday{engine.Monday}, TimeOfDay: tod(9, 0)}

	from := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC) // Mon afternoon
	to := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	if got := rec.PlannedBetween(from, to); got != 1 {
		t.Errorf("expected Monday to count in a window starting mid-day, got %d", got)
	}
}
