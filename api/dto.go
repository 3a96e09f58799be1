/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing
  field renaming without breaking clients and API-specific validation.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers. Raw user input (negative dosages, bad dates) is rejected
  here at the form boundary - the engine itself computes sensibly over
  whatever was persisted.

SEE ALSO:
  - handlers.go: Uses these types
  - course/factory.go: The stored JSON schema these mirror
*/
package api

import (
	"time"

	"github.com/doseplan/course-engine/engine"
)

// =============================================================================
// COURSE TYPES
// =============================================================================

// DoseDTO carries both dose shapes; the compound's form picks the variant.
type DoseDTO struct {
	VolumeML             *float64 `json:"volumeMl,omitempty"`
	ConcentrationMgPerML *float64 `json:"concentrationMgPerMl,omitempty"`
	Units                *float64 `json:"unitsPerAdministration,omitempty"`
	MgPerUnit            *float64 `json:"mgPerUnit,omitempty"`
}

// CompoundInput is one compound in a create/update request. Form is free
// text; it is normalized to a class exactly once on the way in.
type CompoundInput struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Form  string   `json:"form"`
	Dose  *DoseDTO `json:"dose,omitempty"`
}

// RecurrenceInput is one compound's weekly schedule in a request.
// Weekdays are ISO (Mon=1..Sun=7); 0 is accepted as Sunday.
type RecurrenceInput struct {
	DaysOfWeek        []int `json:"daysOfWeek"`
	Hour              *int  `json:"hour,omitempty"`
	Minute            *int  `json:"minute,omitempty"`
	OccurrencesPerDay int   `json:"occurrencesPerDay,omitempty"`
}

// CourseRequest creates or replaces a course.
type CourseRequest struct {
	ID            string                     `json:"id,omitempty"`
	Title         string                     `json:"title"`
	StartDate     string                     `json:"start_date,omitempty"` // YYYY-MM-DD
	DurationWeeks int                        `json:"duration_weeks,omitempty"`
	Compounds     []CompoundInput            `json:"compounds"`
	Schedule      map[string]RecurrenceInput `json:"schedule,omitempty"`
}

// ChangeStatusRequest transitions a course's lifecycle status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// CompoundDTO is a compound in API responses, with the normalized dose
// alongside the raw spec.
type CompoundDTO struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Class        string   `json:"class"`
	Dose         *DoseDTO `json:"dose,omitempty"`
	NormalizedMg *float64 `json:"normalized_mg,omitempty"` // absent when uncomputable
	DoseDisplay  string   `json:"dose_display"`
}

// CourseSummaryDTO is the course-list projection: identity plus the
// progress percentage at the request's now.
type CourseSummaryDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	StartDate       string `json:"start_date,omitempty"`
	EndDate         string `json:"end_date,omitempty"`
	DurationWeeks   int    `json:"duration_weeks"`
	CompoundCount   int    `json:"compound_count"`
	PercentComplete int    `json:"percent_complete"`
}

// CourseDTO is a course in API responses.
type CourseDTO struct {
	ID            string                     `json:"id"`
	Title         string                     `json:"title"`
	StartDate     string                     `json:"start_date,omitempty"`
	EndDate       string                     `json:"end_date,omitempty"`
	DurationWeeks int                        `json:"duration_weeks"`
	Status        string                     `json:"status"`
	Compounds     []CompoundDTO              `json:"compounds"`
	Schedule      map[string]RecurrenceInput `json:"schedule"`
}

// =============================================================================
// ACTION TYPES
// =============================================================================

// LogActionRequest appends one administration to the course log.
type LogActionRequest struct {
	CompoundKey string   `json:"compound_key,omitempty"`
	Class       string   `json:"class,omitempty"`     // required when compound_key is absent
	Timestamp   string   `json:"timestamp,omitempty"` // RFC3339; defaults to server now
	QuantityMg  *float64 `json:"quantity_mg,omitempty"`
}

// ActionDTO is a logged action in API responses.
type ActionDTO struct {
	ID          string  `json:"id"`
	CourseID    string  `json:"course_id"`
	CompoundKey string  `json:"compound_key,omitempty"`
	Class       string  `json:"class"`
	Timestamp   string  `json:"timestamp"`
	QuantityMg  float64 `json:"quantity_mg"`
}

// =============================================================================
// SCHEDULE PROJECTION TYPES
// =============================================================================

// ProgressDTO mirrors engine.ProgressSnapshot.
type ProgressDTO struct {
	DaysPassed      int `json:"days_passed"`
	TotalDays       int `json:"total_days"`
	DaysLeft        int `json:"days_left"`
	PercentComplete int `json:"percent_complete"`
}

// NextOccurrenceDTO is the soonest future trigger for one class.
type NextOccurrenceDTO struct {
	Class         string `json:"class"`
	CompoundKey   string `json:"compound_key"`
	CompoundLabel string `json:"compound_label"`
	OccursAt      string `json:"occurs_at"`
	ETAHours      int    `json:"eta_hours"`
	ETAMinutes    int    `json:"eta_minutes"`
	ETA           string `json:"eta"`
}

// CompoundComplianceDTO scores one compound over the window.
type CompoundComplianceDTO struct {
	Key               string `json:"key"`
	Label             string `json:"label"`
	Class             string `json:"class"`
	PlannedCount      int    `json:"planned_count"`
	ActualCount       int    `json:"actual_count"`
	CompliancePercent int    `json:"compliance_percent"`
	OffScheduleCount  int    `json:"off_schedule_count,omitempty"`
}

// ComplianceDTO is the trailing-window compliance report.
type ComplianceDTO struct {
	WindowStart      string                  `json:"window_start"`
	WindowEnd        string                  `json:"window_end"`
	AggregatePercent int                     `json:"aggregate_percent"`
	OffScheduleCount int                     `json:"off_schedule_count"`
	PerCompound      []CompoundComplianceDTO `json:"per_compound"`
}

// DescribeDTO is the full facade projection for one course.
type DescribeDTO struct {
	CourseID   string              `json:"course_id"`
	AsOf       string              `json:"as_of"`
	Progress   ProgressDTO         `json:"progress"`
	Next       []NextOccurrenceDTO `json:"next"`
	Compliance ComplianceDTO       `json:"compliance"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCompoundDTO(c engine.Compound) CompoundDTO {
	dto := CompoundDTO{
		Key:   string(c.Key),
		Label: c.Label,
		Class: string(c.Class),
		Dose:  encodeDoseDTO(c.Dose),
	}

	norm := engine.NormalizeDose(c.Dose)
	switch {
	case norm.Known:
		mg, _ := norm.Mg.Float64()
		dto.NormalizedMg = &mg
		dto.DoseDisplay = norm.Mg.String() + " mg"
	case norm.DisplayVolumeML.IsPositive():
		dto.DoseDisplay = norm.DisplayVolumeML.String() + " ml"
	case norm.DisplayUnits.IsPositive():
		dto.DoseDisplay = norm.DisplayUnits.String() + " units"
	default:
		dto.DoseDisplay = "unknown"
	}
	return dto
}

func encodeDoseDTO(d engine.Dose) *DoseDTO {
	switch d := d.(type) {
	case engine.InjectionDose:
		dto := &DoseDTO{}
		if d.VolumeML.IsPositive() {
			v, _ := d.VolumeML.Float64()
			dto.VolumeML = &v
		}
		if d.ConcentrationMgPerML.IsPositive() {
			v, _ := d.ConcentrationMgPerML.Float64()
			dto.ConcentrationMgPerML = &v
		}
		return dto
	case engine.OralDose:
		dto := &DoseDTO{}
		if d.Units.IsPositive() {
			v, _ := d.Units.Float64()
			dto.Units = &v
		}
		if d.MgPerUnit.IsPositive() {
			v, _ := d.MgPerUnit.Float64()
			dto.MgPerUnit = &v
		}
		return dto
	default:
		return nil
	}
}

func toCourseDTO(c *engine.Course) CourseDTO {
	dto := CourseDTO{
		ID:            string(c.ID),
		Title:         c.Title,
		DurationWeeks: c.Duration(),
		Status:        string(c.Status),
		Compounds:     make([]CompoundDTO, 0, len(c.Compounds)),
		Schedule:      make(map[string]RecurrenceInput, len(c.Schedule)),
	}
	if !c.StartDate.IsZero() {
		dto.StartDate = c.StartDate.Format("2006-01-02")
		dto.EndDate = c.EndDate().Format("2006-01-02")
	}
	for _, compound := range c.Compounds {
		dto.Compounds = append(dto.Compounds, toCompoundDTO(compound))
	}
	for key, r := range c.Schedule {
		ri := RecurrenceInput{OccurrencesPerDay: r.PerDay()}
		for _, d := range r.DaysOfWeek {
			ri.DaysOfWeek = append(ri.DaysOfWeek, int(d))
		}
		if r.TimeOfDay != nil {
			hour, minute := r.TimeOfDay.Hour, r.TimeOfDay.Minute
			ri.Hour, ri.Minute = &hour, &minute
		}
		dto.Schedule[string(key)] = ri
	}
	return dto
}

func toActionDTO(a engine.LoggedAction) ActionDTO {
	mg, _ := a.Quantity.Float64()
	return ActionDTO{
		ID:          string(a.ID),
		CourseID:    string(a.CourseID),
		CompoundKey: string(a.CompoundKey),
		Class:       string(a.Class),
		Timestamp:   a.Timestamp.Format(time.RFC3339),
		QuantityMg:  mg,
	}
}

func toDescribeDTO(courseID engine.CourseID, now time.Time, desc *engine.CourseDescription) DescribeDTO {
	dto := DescribeDTO{
		CourseID: string(courseID),
		AsOf:     now.Format(time.RFC3339),
		Progress: ProgressDTO{
			DaysPassed:      desc.Progress.DaysPassed,
			TotalDays:       desc.Progress.TotalDays,
			DaysLeft:        desc.Progress.DaysLeft,
			PercentComplete: desc.Progress.PercentComplete,
		},
		Compliance: ComplianceDTO{
			WindowStart:      desc.Compliance.Window.Start.Format(time.RFC3339),
			WindowEnd:        desc.Compliance.Window.End.Format(time.RFC3339),
			AggregatePercent: desc.Compliance.AggregatePercent,
			OffScheduleCount: desc.Compliance.OffScheduleCount,
		},
	}

	// Stable class order for the next-occurrence list.
	for _, class := range engine.Classes() {
		next, ok := desc.NextByClass[class]
		if !ok {
			continue
		}
		dto.Next = append(dto.Next, NextOccurrenceDTO{
			Class:         string(next.Class),
			CompoundKey:   string(next.CompoundKey),
			CompoundLabel: next.CompoundLabel,
			OccursAt:      next.OccursAt.Format(time.RFC3339),
			ETAHours:      next.ETA.Hours,
			ETAMinutes:    next.ETA.Minutes,
			ETA:           next.ETA.String(),
		})
	}

	for _, cc := range desc.Compliance.PerCompound {
		dto.Compliance.PerCompound = append(dto.Compliance.PerCompound, CompoundComplianceDTO{
			Key:               string(cc.Key),
			Label:             cc.Label,
			Class:             string(cc.Class),
			PlannedCount:      cc.PlannedCount,
			ActualCount:       cc.ActualCount,
			CompliancePercent: cc.CompliancePercent,
			OffScheduleCount:  cc.OffScheduleCount,
		})
	}
	return dto
}
