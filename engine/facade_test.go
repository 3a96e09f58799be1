package engine_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/doseplan/course-engine/engine"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// mixedCourse pairs the Mon/Thu injectable with a daily tablet.
func mixedCourse() *engine.Course {
	course := monThuCourse()
	course.Compounds = append(course.Compounds, engine.Compound{
		Key:   "tamox",
		Label: "Tamoxifen",
		Class: engine.ClassTablet,
		Dose:  engine.OralDose{Units: decimal.NewFromInt(1), MgPerUnit: decimal.NewFromInt(20)},
	})
	course.Schedule["tamox"] = engine.Recurrence{
		DaysOfWeek: []engine.Weekday{
			engine.Monday, engine.Tuesday, engine.Wednesday, engine.Thursday,
			engine.Friday, engine.Saturday, engine.Sunday,
		},
		TimeOfDay: &engine.TimeOfDay{Hour: 8, Minute: 30},
	}
	return course
}

// =============================================================================
// FACADE TESTS
// =============================================================================

func TestDescribe_ComposesAllViews(t *testing.T) {
	// GIVEN: a mixed course two weeks in, now Wednesday 10:00
	course := mixedCourse()
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC) // Wed

	log := []engine.LoggedAction{
		action("a1", "test-e", engine.ClassInjection, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)),
	}

	desc, err := engine.Describe(course, log, now)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: progress reflects 16 of 84 days
	if desc.Progress.DaysPassed != 16 {
		t.Errorf("expected 16 days passed, got %d", desc.Progress.DaysPassed)
	}

	// AND: each scheduled class has a strictly-future next occurrence
	inj, ok := desc.NextByClass[engine.ClassInjection]
	if !ok {
		t.Fatal("expected a next injection")
	}
	wantInj := time.Date(2024, 1, 18, 9, 0, 0, 0, time.UTC) // Thu
	if !inj.OccursAt.Equal(wantInj) {
		t.Errorf("expected next injection %v, got %v", wantInj, inj.OccursAt)
	}

	tab, ok := desc.NextByClass[engine.ClassTablet]
	if !ok {
		t.Fatal("expected a next tablet")
	}
	wantTab := time.Date(2024, 1, 18, 8, 30, 0, 0, time.UTC) // today's 08:30 passed
	if !tab.OccursAt.Equal(wantTab) {
		t.Errorf("expected next tablet %v, got %v", wantTab, tab.OccursAt)
	}

	// AND: unscheduled classes are simply absent
	if _, ok := desc.NextByClass[engine.ClassGel]; ok {
		t.Error("gel has no compounds and must not appear")
	}

	// AND: compliance covers the trailing 7 days ending now
	if !desc.Compliance.Window.End.Equal(now) {
		t.Errorf("expected window ending at now, got %v", desc.Compliance.Window.End)
	}
	if len(desc.Compliance.PerCompound) != 2 {
		t.Errorf("expected 2 scored compounds, got %d", len(desc.Compliance.PerCompound))
	}
}

func TestDescribe_Idempotent(t *testing.T) {
	// Identical inputs must yield structurally identical output.
	course := mixedCourse()
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)
	log := []engine.LoggedAction{
		action("a1", "test-e", engine.ClassInjection, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)),
	}

	first, err := engine.Describe(course, log, now)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Describe(course, log, now)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical descriptions:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDescribe_NextOccurrenceMonotoneInNow(t *testing.T) {
	// Advancing now never moves the next occurrence into the past.
	course := mixedCourse()
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	var prev time.Time
	for h := 0; h < 48; h += 3 {
		now := base.Add(time.Duration(h) * time.Hour)
		desc, err := engine.Describe(course, nil, now)
		if err != nil {
			t.Fatal(err)
		}
		next, ok := desc.NextByClass[engine.ClassInjection]
		if !ok {
			t.Fatalf("now=%v: expected a next injection", now)
		}
		if !next.OccursAt.After(now) {
			t.Errorf("now=%v: occurrence %v not strictly future", now, next.OccursAt)
		}
		if !prev.IsZero() && next.OccursAt.Before(prev) {
			t.Errorf("now=%v: next occurrence moved backwards (%v < %v)", now, next.OccursAt, prev)
		}
		prev = next.OccursAt
	}
}

func TestDescribe_NilLogIsEmptyLog(t *testing.T) {
	desc, err := engine.Describe(mixedCourse(), nil, time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	for _, cc := range desc.Compliance.PerCompound {
		if cc.ActualCount != 0 {
			t.Errorf("expected zero actuals with a nil log, got %+v", cc)
		}
	}
}

func TestDescribe_NilCourse(t *testing.T) {
	_, err := engine.Describe(nil, nil, time.Now())
	if !errors.Is(err, engine.ErrNilCourse) {
		t.Errorf("expected ErrNilCourse, got %v", err)
	}
}
