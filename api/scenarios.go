/*
scenarios.go - Demo scenario seeds

PURPOSE:
  Loads small ready-made courses with a few logged actions so the API can
  be explored without hand-crafting requests. Each scenario is built
  relative to the handler clock, so the projections it demonstrates
  (upcoming injection, partial compliance) stay fresh whenever loaded.

SEE ALSO:
  - handlers.go: Handler context
  - course/factory.go: The record shapes seeded here
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/doseplan/course-engine/course"
	"github.com/doseplan/course-engine/engine"
)

// ScenarioDTO describes one demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects the scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "injection-basic",
		Name:        "Basic injection course",
		Description: "One injectable compound, Mon/Thu at 09:00, two weeks in, one missed dose.",
	},
	{
		ID:          "mixed-stack",
		Name:        "Mixed injection + oral stack",
		Description: "Injectable twice a week plus a daily tablet; includes an as-needed compound.",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario seeds the selected scenario's course and actions.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var (
		rec     course.Record
		actions []engine.LoggedAction
		err     error
	)
	now := h.Now()

	switch req.ID {
	case "injection-basic":
		rec, actions, err = injectionBasicScenario(now)
	case "mixed-stack":
		rec, actions, err = mixedStackScenario(now)
	default:
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build scenario", err)
		return
	}

	if err := h.seed(r.Context(), rec, actions); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"course_id": rec.ID})
}

func (h *Handler) seed(ctx context.Context, rec course.Record, actions []engine.LoggedAction) error {
	if err := h.Store.SaveCourse(ctx, rec); err != nil {
		return err
	}
	for _, a := range actions {
		if err := h.Store.Append(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// injectionBasicScenario: a 12-week course two weeks in, scheduled
// Mon/Thu 09:00, with three of the last four planned doses logged.
func injectionBasicScenario(now time.Time) (course.Record, []engine.LoggedAction, error) {
	start := engine.StartOfDay(now).AddDate(0, 0, -14)
	c := &engine.Course{
		ID:            engine.CourseID("demo-" + uuid.NewString()[:8]),
		Title:         "Test E 250 (demo)",
		StartDate:     start,
		DurationWeeks: 12,
		Status:        engine.StatusActive,
		Compounds: []engine.Compound{{
			Key:   "test-e",
			Label: "Test E",
			Class: engine.ClassInjection,
			Dose: engine.InjectionDose{
				VolumeML:             decimal.NewFromInt(1),
				ConcentrationMgPerML: decimal.NewFromInt(250),
			},
		}},
		Schedule: map[engine.CompoundKey]engine.Recurrence{
			"test-e": {
				DaysOfWeek:        []engine.Weekday{engine.Monday, engine.Thursday},
				TimeOfDay:         &engine.TimeOfDay{Hour: 9},
				OccurrencesPerDay: 1,
			},
		},
	}

	rec, err := course.EncodeCourse(c)
	if err != nil {
		return course.Record{}, nil, err
	}

	// Log the scheduled doses of the past week, skipping the most recent
	// one so the compliance screen shows something other than 100.
	var actions []engine.LoggedAction
	recurrence := c.Schedule["test-e"]
	var planned []time.Time
	for d := 8; d >= 1; d-- {
		day := engine.StartOfDay(now).AddDate(0, 0, -d)
		planned = append(planned, recurrence.OccurrencesOn(day)...)
	}
	for i, at := range planned {
		if i == len(planned)-1 {
			continue // the missed dose
		}
		actions = append(actions, engine.LoggedAction{
			ID:          engine.ActionID(uuid.NewString()),
			CourseID:    c.ID,
			CompoundKey: "test-e",
			Class:       engine.ClassInjection,
			Timestamp:   at,
			Quantity:    decimal.NewFromInt(250),
		})
	}
	return rec, actions, nil
}

// mixedStackScenario: injectable Mon/Thu plus a daily tablet plus an
// as-needed gel with no schedule.
func mixedStackScenario(now time.Time) (course.Record, []engine.LoggedAction, error) {
	start := engine.StartOfDay(now).AddDate(0, 0, -7)
	everyDay := []engine.Weekday{
		engine.Monday, engine.Tuesday, engine.Wednesday, engine.Thursday,
		engine.Friday, engine.Saturday, engine.Sunday,
	}
	c := &engine.Course{
		ID:            engine.CourseID("demo-" + uuid.NewString()[:8]),
		Title:         "Mixed stack (demo)",
		StartDate:     start,
		DurationWeeks: 8,
		Status:        engine.StatusActive,
		Compounds: []engine.Compound{
			{
				Key:   "test-e",
				Label: "Test E",
				Class: engine.ClassInjection,
				Dose: engine.InjectionDose{
					VolumeML:             decimal.NewFromFloat(0.5),
					ConcentrationMgPerML: decimal.NewFromInt(250),
				},
			},
			{
				Key:   "tamox",
				Label: "Tamoxifen",
				Class: engine.ClassTablet,
				Dose: engine.OralDose{
					Units:     decimal.NewFromInt(1),
					MgPerUnit: decimal.NewFromInt(20),
				},
			},
			{
				Key:   "gel",
				Label: "Topical gel",
				Class: engine.ClassGel,
				// as-needed: no dose spec, no schedule
			},
		},
		Schedule: map[engine.CompoundKey]engine.Recurrence{
			"test-e": {
				DaysOfWeek:        []engine.Weekday{engine.Monday, engine.Thursday},
				TimeOfDay:         &engine.TimeOfDay{Hour: 9},
				OccurrencesPerDay: 1,
			},
			"tamox": {
				DaysOfWeek:        everyDay,
				TimeOfDay:         &engine.TimeOfDay{Hour: 8, Minute: 30},
				OccurrencesPerDay: 1,
			},
		},
	}

	rec, err := course.EncodeCourse(c)
	if err != nil {
		return course.Record{}, nil, err
	}

	// A handful of tablet logs plus one off-schedule gel application.
	var actions []engine.LoggedAction
	for d := 5; d >= 1; d-- {
		at := engine.TimeOfDay{Hour: 8, Minute: 30}.At(engine.StartOfDay(now).AddDate(0, 0, -d))
		actions = append(actions, engine.LoggedAction{
			ID:          engine.ActionID(uuid.NewString()),
			CourseID:    c.ID,
			CompoundKey: "tamox",
			Class:       engine.ClassTablet,
			Timestamp:   at,
			Quantity:    decimal.NewFromInt(20),
		})
	}
	actions = append(actions, engine.LoggedAction{
		ID:          engine.ActionID(uuid.NewString()),
		CourseID:    c.ID,
		CompoundKey: "gel",
		Class:       engine.ClassGel,
		Timestamp:   now.Add(-36 * time.Hour),
	})
	return rec, actions, nil
}
