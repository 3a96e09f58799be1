/*
compliance.go - Planned-vs-actual compliance scoring

PURPOSE:
  Compares what a course planned (schedulable recurrences expanded over a
  trailing window) against what was actually logged (the append-only
  action log) and produces a 0-100 compliance percentage per compound and
  aggregated.

SCORING POLICY:
  - plannedCount: occurrences over the window's days, weighted by the
    per-day count.
  - actualCount: logged actions for the compound (or its class, for
    entries that predate per-compound logging) inside the window.
  - percent: min(100, round(actual/planned*100)) when planned > 0.
    Zero when planned == 0, regardless of actuals - logging outside any
    plan never inflates compliance; it is reported separately as the
    off-schedule count.
  - aggregate: simple mean of per-compound percentages over compounds
    with a plan, NOT a pooled count ratio. A compound with few planned
    doses is not drowned out by one with many; the question is "did you
    stick to EACH plan".

SEE ALSO:
  - recurrence.go: PlannedBetween
  - facade.go: Uses the default trailing 7-day window
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WINDOW - Trailing time span for compliance
// =============================================================================

// DefaultComplianceWindowDays is the trailing window length used by the
// facade.
const DefaultComplianceWindowDays = 7

// Window is an inclusive [Start, End] time span.
type Window struct {
	Start time.Time
	End   time.Time
}

// TrailingWindow returns the window covering the given number of calendar
// days ending today: from midnight days-1 days ago through now. Day-based
// so planned counts cover whole scheduled days, matching how the screens
// frame "the last 7 days".
func TrailingWindow(now time.Time, days int) Window {
	if days < 1 {
		days = DefaultComplianceWindowDays
	}
	return Window{Start: StartOfDay(now).AddDate(0, 0, -(days - 1)), End: now}
}

// Contains reports whether the instant falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// =============================================================================
// COMPLIANCE REPORT
// =============================================================================

// CompoundCompliance scores one compound over a window.
type CompoundCompliance struct {
	Key   CompoundKey
	Label string
	Class AdministrationClass

	PlannedCount      int
	ActualCount       int
	CompliancePercent int

	// OffScheduleCount is the actual count when no plan existed: tracked,
	// but never counted as compliance.
	OffScheduleCount int
}

// ComplianceReport is the per-compound and aggregate view over a window.
type ComplianceReport struct {
	Window      Window
	PerCompound []CompoundCompliance

	// AggregatePercent is the simple mean of per-compound percentages over
	// compounds with a plan. Zero when nothing was planned.
	AggregatePercent int

	// OffScheduleCount totals actions logged against compounds without a
	// plan in this window.
	OffScheduleCount int
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Compliance scores the course's compounds against the logged actions over
// the window. The log may be raw: entries are filtered by course, by
// timestamp, and matched to compounds by key - or by class for entries
// without a key, which credit the first declared compound of that class so
// no action is counted twice. Never divides by zero, never goes negative.
func Compliance(course *Course, log []LoggedAction, window Window) (ComplianceReport, error) {
	if course == nil {
		return ComplianceReport{}, ErrNilCourse
	}

	// Count in-window actions once up front: keyed per compound, keyless
	// per class.
	byKey := make(map[CompoundKey]int)
	byClass := make(map[AdministrationClass]int)
	for _, a := range log {
		if a.CourseID != "" && a.CourseID != course.ID {
			continue
		}
		if !window.Contains(a.Timestamp) {
			continue
		}
		if a.CompoundKey != "" {
			byKey[a.CompoundKey]++
		} else {
			byClass[a.Class]++
		}
	}

	report := ComplianceReport{Window: window}
	classClaimed := make(map[AdministrationClass]bool)
	plannedPercents := 0
	plannedCompounds := 0

	for _, compound := range course.Compounds {
		rec, _ := course.RecurrenceFor(compound.Key)

		cc := CompoundCompliance{
			Key:          compound.Key,
			Label:        compound.Label,
			Class:        compound.Class,
			PlannedCount: rec.PlannedBetween(window.Start, window.End),
			ActualCount:  byKey[compound.Key],
		}

		// Keyless entries credit the first declared compound of the class.
		if !classClaimed[compound.Class] {
			cc.ActualCount += byClass[compound.Class]
			classClaimed[compound.Class] = true
		}

		if cc.PlannedCount > 0 {
			cc.CompliancePercent = ratioPercent(cc.ActualCount, cc.PlannedCount)
			plannedPercents += cc.CompliancePercent
			plannedCompounds++
		} else {
			cc.OffScheduleCount = cc.ActualCount
			report.OffScheduleCount += cc.ActualCount
		}

		report.PerCompound = append(report.PerCompound, cc)
	}

	if plannedCompounds > 0 {
		report.AggregatePercent = ratioPercent(plannedPercents, plannedCompounds*100)
	}
	return report, nil
}

// ratioPercent computes min(100, round(actual/planned*100)).
func ratioPercent(actual, planned int) int {
	p := int(decimal.NewFromInt(int64(actual * 100)).
		Div(decimal.NewFromInt(int64(planned))).
		Round(0).IntPart())
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}
