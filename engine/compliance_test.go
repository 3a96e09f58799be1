package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/doseplan/course-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func action(id string, key engine.CompoundKey, class engine.AdministrationClass, at time.Time) engine.LoggedAction {
	return engine.LoggedAction{
		ID:          engine.ActionID(id),
		CourseID:    "course-1",
		CompoundKey: key,
		Class:       class,
		Timestamp:   at,
	}
}

// =============================================================================
// WINDOW TESTS
// =============================================================================

func TestTrailingWindow_CoversExactlyNDays(t *testing.T) {
	// GIVEN: now = Wednesday 2024-01-10 15:30
	now := time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

	w := engine.TrailingWindow(now, 7)

	// THEN: window starts at midnight six days earlier and ends now
	wantStart := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, w.Start)
	}
	if !w.End.Equal(now) {
		t.Errorf("expected end %v, got %v", now, w.End)
	}

	// AND: contains the edges, not the day before
	if !w.Contains(wantStart) || !w.Contains(now) {
		t.Error("window must contain its own bounds")
	}
	if w.Contains(wantStart.Add(-time.Minute)) {
		t.Error("window must not reach before its start day")
	}
}

func TestTrailingWindow_NonPositiveDays_UsesDefault(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	w := engine.TrailingWindow(now, 0)

	wantStart := engine.StartOfDay(now).AddDate(0, 0, -(engine.DefaultComplianceWindowDays - 1))
	if !w.Start.Equal(wantStart) {
		t.Errorf("expected default window start %v, got %v", wantStart, w.Start)
	}
}

// =============================================================================
// COMPLIANCE TESTS
// =============================================================================

func TestCompliance_HalfThePlan(t *testing.T) {
	// GIVEN: Mon/Thu 09:00 plan; the window holds one Monday and one Thursday;
	// only the Monday dose was logged
	course := monThuCourse()
	now := time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC) // Sun evening
	window := engine.TrailingWindow(now, 7)              // Mon 01-01 .. Sun 01-07

	log := []engine.LoggedAction{
		action("a1", "test-e", engine.ClassInjection, time.Date(2024, 1, 1, 9, 5, 0, 0, time.UTC)),
	}

	report, err := engine.Compliance(course, log, window)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: planned 2, actual 1, 50%
	if len(report.PerCompound) != 1 {
		t.Fatalf("expected one compound, got %d", len(report.PerCompound))
	}
	cc := report.PerCompound[0]
	if cc.PlannedCount != 2 || cc.ActualCount != 1 {
		t.Errorf("expected planned=2 actual=1, got planned=%d actual=%d", cc.PlannedCount, cc.ActualCount)
	}
	if cc.CompliancePercent != 50 {
		t.Errorf("expected 50%%, got %d%%", cc.CompliancePercent)
	}
	if report.AggregatePercent != 50 {
		t.Errorf("expected aggregate 50%%, got %d%%", report.AggregatePercent)
	}
}

func TestCompliance_OveradherenceCapsAtHundred(t *testing.T) {
	// GIVEN: two planned doses, three logged
	course := monThuCourse()
	window := engine.TrailingWindow(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC), 7)

	log := []engine.LoggedAction{
		action("a1", "test-e", engine.ClassInjection, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		action("a2", "test-e", engine.ClassInjection, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)),
		action("a3", "test-e", engine.ClassInjection, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)),
	}

	report, err := engine.Compliance(course, log, window)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.PerCompound[0].CompliancePercent; got != 100 {
		t.Errorf("expected cap at 100%%, got %d%%", got)
	}
}

func TestCompliance_NoPlan_ActionsAreOffSchedule(t *testing.T) {
	// GIVEN: an as-needed gel (empty weekday set) with a logged use
	course := &engine.Course{
		ID:     "course-1",
		Status: engine.StatusActive,
		Compounds: []engine.Compound{
			{Key: "gel", Label: "Topical gel", Class: engine.ClassGel},
		},
		Schedule: map[engine.CompoundKey]engine.Recurrence{},
	}
	window := engine.TrailingWindow(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC), 7)

	log := []engine.LoggedAction{
		action("a1", "gel", engine.ClassGel, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)),
	}

	report, err := engine.Compliance(course, log, window)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: 0% compliance, the action surfaces as off-schedule instead
	cc := report.PerCompound[0]
	if cc.CompliancePercent != 0 {
		t.Errorf("unplanned logging must not inflate compliance, got %d%%", cc.CompliancePercent)
	}
	if cc.OffScheduleCount != 1 || report.OffScheduleCount != 1 {
		t.Errorf("expected off-schedule count 1, got compound=%d report=%d", cc.OffScheduleCount, report.OffScheduleCount)
	}
	if report.AggregatePercent != 0 {
		t.Errorf("expected aggregate 0%% with no plans, got %d%%", report.AggregatePercent)
	}
}

func TestCompliance_KeylessActionsCreditClassOnce(t *testing.T) {
	// GIVEN: two injectables; one keyless legacy entry for the class
	course := monThuCourse()
	course.Compounds = append(course.Compounds, engine.Compound{
		Key: "test-c", Label: "Test C", Class: engine.ClassInjection,
	})
	course.Schedule["test-c"] = course.Schedule["test-e"]

	window := engine.TrailingWindow(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC), 7)
	log := []engine.LoggedAction{
		action("a1", "", engine.ClassInjection, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
	}

	report, err := engine.Compliance(course, log, window)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: the first declared compound absorbs it; the action counts once
	total := 0
	for _, cc := range report.PerCompound {
		total += cc.ActualCount
	}
	if total != 1 {
		t.Fatalf("keyless action counted %d times, expected once", total)
	}
	if report.PerCompound[0].ActualCount != 1 {
		t.Errorf("expected first declared compound credited, got %+v", report.PerCompound)
	}
}

func TestCompliance_FiltersOtherCoursesAndOutOfWindow(t *testing.T) {
	course := monThuCourse()
	window := engine.TrailingWindow(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC), 7)

	other := action("a1", "test-e", engine.ClassInjection, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	other.CourseID = "someone-else"
	stale := action("a2", "test-e", engine.ClassInjection, time.Date(2023, 12, 25, 9, 0, 0, 0, time.UTC))

	report, err := engine.Compliance(course, []engine.LoggedAction{other, stale}, window)
	if err != nil {
		t.Fatal(err)
	}
	if got := report.PerCompound[0].ActualCount; got != 0 {
		t.Errorf("expected filtered actions not to count, got %d", got)
	}
}

func TestCompliance_AggregateIsMeanOverPlannedCompounds(t *testing.T) {
	// GIVEN: compound A at 100%, compound B at 0%, plus an unplanned gel
	course := monThuCourse()
	course.Compounds = append(course.Compounds,
		engine.Compound{Key: "tamox", Label: "Tamoxifen", Class: engine.ClassTablet},
		engine.Compound{Key: "gel", Label: "Gel", Class: engine.ClassGel},
	)
	course.Schedule["tamox"] = engine.Recurrence{
		DaysOfWeek: []engine.Weekday{engine.Monday, engine.Thursday},
		TimeOfDay:  &engine.TimeOfDay{Hour: 8, Minute: 30},
	}

	window := engine.TrailingWindow(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC), 7)
	log := []engine.LoggedAction{
		action("a1", "test-e", engine.ClassInjection, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)),
		action("a2", "test-e", engine.ClassInjection, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)),
	}

	report, err := engine.Compliance(course, log, window)
	if err != nil {
		t.Fatal(err)
	}

	// THEN: mean of 100 and 0 is 50; the unplanned gel does not dilute it
	if report.AggregatePercent != 50 {
		t.Errorf("expected aggregate 50%%, got %d%%", report.AggregatePercent)
	}
}

func TestCompliance_EmptyLog_ZeroNotError(t *testing.T) {
	course := monThuCourse()
	window := engine.TrailingWindow(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC), 7)

	report, err := engine.Compliance(course, nil, window)
	if err != nil {
		t.Fatal(err)
	}
	if report.PerCompound[0].CompliancePercent != 0 {
		t.Errorf("expected 0%% with an empty log, got %d%%", report.PerCompound[0].CompliancePercent)
	}
}

func TestCompliance_NilCourse(t *testing.T) {
	_, err := engine.Compliance(nil, nil, engine.Window{})
	if !errors.Is(err, engine.ErrNilCourse) {
		t.Errorf("expected ErrNilCourse, got %v", err)
	}
}
