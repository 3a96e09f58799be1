/*
factory.go - Stored record to typed Course conversion

PURPOSE:
  The store keeps each course as a flat record with the compounds and the
  schedule JSON-encoded in single columns (the shape the original data
  came in). This factory deserializes that record into a typed
  engine.Course exactly once, at the boundary: free-text forms become
  AdministrationClass, 0=Sunday weekday encodings become ISO, and raw
  dose numbers become tagged Dose variants. Downstream code never sees a
  half-populated duck-typed blob.

JSON SCHEMA:
  compounds column:
    [{"key": "test-e", "label": "Test E", "form": "Инъекция",
      "dose": {"volumeMl": 1, "concentrationMgPerMl": 250}}]

  schedule column:
    {"test-e": {"daysOfWeek": [1, 4], "hour": 9, "minute": 0,
                "occurrencesPerDay": 1}}

  Weekdays accept both ISO (Mon=1..Sun=7) and the legacy 0=Sunday form;
  0 is translated to 7 here, never inside the engine. A missing hour
  leaves the recurrence inactive for projection, matching the engine's
  schedulability rule.

DEGRADATION:
  Only structurally broken JSON errors out. Missing or partial fields
  (no start date, no dose, empty schedule) produce a valid Course that
  the engine degrades over per its own rules - partial states are
  expected and common.

SEE ALSO:
  - forms.go: Form/status token tables
  - store/sqlite: Persists and loads these records
*/
package course

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/doseplan/course-engine/engine"
)

// DateLayout is the calendar-date format used in stored records.
const DateLayout = "2006-01-02"

// =============================================================================
// RECORD - The flat stored shape
// =============================================================================

// Record is a course as the store keeps it: scalar columns plus two
// JSON-encoded blobs.
type Record struct {
	ID            string
	Title         string
	StartDate     string // DateLayout; empty = not set
	DurationWeeks int
	Status        string // free text, normalized on parse
	CompoundsJSON string
	ScheduleJSON  string
}

// compoundJSON is one entry of the compounds column.
type compoundJSON struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Form  string    `json:"form"`
	Dose  *doseJSON `json:"dose,omitempty"`
}

// doseJSON carries both dose shapes; the compound's class picks the
// variant. Pointers distinguish absent from zero.
type doseJSON struct {
	VolumeML             *float64 `json:"volumeMl,omitempty"`
	ConcentrationMgPerML *float64 `json:"concentrationMgPerMl,omitempty"`
	Units                *float64 `json:"unitsPerAdministration,omitempty"`
	MgPerUnit            *float64 `json:"mgPerUnit,omitempty"`
}

// recurrenceJSON is one entry of the schedule column.
type recurrenceJSON struct {
	DaysOfWeek        []int `json:"daysOfWeek"`
	Hour              *int  `json:"hour,omitempty"`
	Minute            *int  `json:"minute,omitempty"`
	OccurrencesPerDay int   `json:"occurrencesPerDay,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseCourse deserializes a stored record into a typed course. Errors
// only on structurally broken JSON; partial data degrades.
func ParseCourse(rec Record) (*engine.Course, error) {
	c := &engine.Course{
		ID:            engine.CourseID(rec.ID),
		Title:         rec.Title,
		DurationWeeks: rec.DurationWeeks,
		Status:        NormalizeStatus(rec.Status),
		Schedule:      make(map[engine.CompoundKey]engine.Recurrence),
	}

	if rec.StartDate != "" {
		if start, err := time.Parse(DateLayout, rec.StartDate); err == nil {
			c.StartDate = start
		}
	}

	if rec.CompoundsJSON != "" {
		var raw []compoundJSON
		if err := json.Unmarshal([]byte(rec.CompoundsJSON), &raw); err != nil {
			return nil, fmt.Errorf("course %s: compounds column: %w", rec.ID, err)
		}
		for _, cj := range raw {
			class := NormalizeForm(cj.Form)
			c.Compounds = append(c.Compounds, engine.Compound{
				Key:   engine.CompoundKey(cj.Key),
				Label: cj.Label,
				Class: class,
				Dose:  parseDose(class, cj.Dose),
			})
		}
	}

	if rec.ScheduleJSON != "" {
		var raw map[string]recurrenceJSON
		if err := json.Unmarshal([]byte(rec.ScheduleJSON), &raw); err != nil {
			return nil, fmt.Errorf("course %s: schedule column: %w", rec.ID, err)
		}
		for key, rj := range raw {
			c.Schedule[engine.CompoundKey(key)] = parseRecurrence(rj)
		}
	}

	return c, nil
}

// parseDose picks the dose variant by class. Oral classes read unit
// fields, everything else reads volume fields. Nil when nothing usable
// was entered.
func parseDose(class engine.AdministrationClass, dj *doseJSON) engine.Dose {
	if dj == nil {
		return nil
	}
	if class.Oral() {
		if dj.Units == nil {
			return nil
		}
		d := engine.OralDose{Units: decimal.NewFromFloat(*dj.Units)}
		if dj.MgPerUnit != nil {
			d.MgPerUnit = decimal.NewFromFloat(*dj.MgPerUnit)
		}
		return d
	}
	if dj.VolumeML == nil {
		return nil
	}
	d := engine.InjectionDose{VolumeML: decimal.NewFromFloat(*dj.VolumeML)}
	if dj.ConcentrationMgPerML != nil {
		d.ConcentrationMgPerML = decimal.NewFromFloat(*dj.ConcentrationMgPerML)
	}
	return d
}

// parseRecurrence translates the wire recurrence, including the legacy
// 0=Sunday weekday encoding, into the engine's ISO representation.
func parseRecurrence(rj recurrenceJSON) engine.Recurrence {
	rec := engine.Recurrence{OccurrencesPerDay: rj.OccurrencesPerDay}

	seen := make(map[engine.Weekday]bool)
	for _, d := range rj.DaysOfWeek {
		if d == 0 {
			d = int(engine.Sunday)
		}
		wd := engine.Weekday(d)
		if !wd.Valid() || seen[wd] {
			continue
		}
		seen[wd] = true
		rec.DaysOfWeek = append(rec.DaysOfWeek, wd)
	}

	if rj.Hour != nil {
		minute := 0
		if rj.Minute != nil {
			minute = *rj.Minute
		}
		tod := engine.TimeOfDay{Hour: *rj.Hour, Minute: minute}
		if tod.Valid() {
			rec.TimeOfDay = &tod
		}
	}
	return rec
}

// =============================================================================
// ENCODING - Course back to the stored shape
// =============================================================================

// EncodeCourse serializes a typed course into the flat record shape the
// store persists. The form column gets the canonical class name, so a
// re-parsed record normalizes to the same class.
func EncodeCourse(c *engine.Course) (Record, error) {
	if c == nil {
		return Record{}, engine.ErrNilCourse
	}

	rec := Record{
		ID:            string(c.ID),
		Title:         c.Title,
		DurationWeeks: c.DurationWeeks,
		Status:        string(c.Status),
	}
	if !c.StartDate.IsZero() {
		rec.StartDate = c.StartDate.Format(DateLayout)
	}

	compounds := make([]compoundJSON, 0, len(c.Compounds))
	for _, compound := range c.Compounds {
		compounds = append(compounds, compoundJSON{
			Key:   string(compound.Key),
			Label: compound.Label,
			Form:  string(compound.Class),
			Dose:  encodeDose(compound.Dose),
		})
	}
	compoundsJSON, err := json.Marshal(compounds)
	if err != nil {
		return Record{}, fmt.Errorf("course %s: encode compounds: %w", c.ID, err)
	}
	rec.CompoundsJSON = string(compoundsJSON)

	schedule := make(map[string]recurrenceJSON, len(c.Schedule))
	for key, r := range c.Schedule {
		rj := recurrenceJSON{OccurrencesPerDay: r.OccurrencesPerDay}
		for _, d := range r.DaysOfWeek {
			rj.DaysOfWeek = append(rj.DaysOfWeek, int(d))
		}
		if r.TimeOfDay != nil {
			hour, minute := r.TimeOfDay.Hour, r.TimeOfDay.Minute
			rj.Hour, rj.Minute = &hour, &minute
		}
		schedule[string(key)] = rj
	}
	scheduleJSON, err := json.Marshal(schedule)
	if err != nil {
		return Record{}, fmt.Errorf("course %s: encode schedule: %w", c.ID, err)
	}
	rec.ScheduleJSON = string(scheduleJSON)

	return rec, nil
}

func encodeDose(d engine.Dose) *doseJSON {
	switch d := d.(type) {
	case engine.InjectionDose:
		dj := &doseJSON{}
		if d.VolumeML.IsPositive() {
			v, _ := d.VolumeML.Float64()
			dj.VolumeML = &v
		}
		if d.ConcentrationMgPerML.IsPositive() {
			v, _ := d.ConcentrationMgPerML.Float64()
			dj.ConcentrationMgPerML = &v
		}
		return dj
	case engine.OralDose:
		dj := &doseJSON{}
		if d.Units.IsPositive() {
			v, _ := d.Units.Float64()
			dj.Units = &v
		}
		if d.MgPerUnit.IsPositive() {
			v, _ := d.MgPerUnit.Float64()
			dj.MgPerUnit = &v
		}
		return dj
	default:
		return nil
	}
}
