/*
handlers.go - HTTP API handlers for the course tracking system

PURPOSE:
  Exposes the course schedule and compliance engine via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the engine
  and the store.

ENDPOINTS:
  Courses:
    GET    /api/courses                 List course summaries
    POST   /api/courses                 Create course
    GET    /api/courses/{id}            Get course details
    PUT    /api/courses/{id}            Replace course configuration
    DELETE /api/courses/{id}            Delete course (and its actions)
    POST   /api/courses/{id}/status     Transition lifecycle status

  Actions:
    GET    /api/courses/{id}/actions    Chronological action log
    POST   /api/courses/{id}/actions    Append one administration

  Schedule:
    GET    /api/courses/{id}/schedule   Progress + next-by-class +
                                        trailing-7-day compliance

  Scenarios:
    GET    /api/scenarios               List demo scenarios
    POST   /api/scenarios/load          Load a demo scenario

CLOCK DISCIPLINE:
  The engine never reads the wall clock. Handlers resolve "now" exactly
  once per request - from the ?now= query parameter when present (great
  for deterministic testing), otherwise from the injected Now func - and
  thread it through, so one request never sees two different nows.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Course not found
  - 409: Conflict (duplicate action id, invalid status transition)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scenarios.go: Demo scenario seeds
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/doseplan/course-engine/course"
	"github.com/doseplan/course-engine/engine"
	"github.com/doseplan/course-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store store.Store

	// Now supplies the reference instant for requests without an explicit
	// ?now= parameter. Injected for deterministic tests.
	Now func() time.Time
}

// NewHandler creates a new handler with the given store.
func NewHandler(st store.Store) *Handler {
	return &Handler{Store: st, Now: time.Now}
}

// requestNow resolves the reference instant for one request.
func (h *Handler) requestNow(r *http.Request) (time.Time, error) {
	if raw := r.URL.Query().Get("now"); raw != "" {
		return time.Parse(time.RFC3339, raw)
	}
	return h.Now(), nil
}

// loadCourse fetches and deserializes one course, writing the error
// response itself. Returns nil when a response was already written.
func (h *Handler) loadCourse(w http.ResponseWriter, r *http.Request) *engine.Course {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.GetCourse(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load course", err)
		return nil
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Course not found", nil)
		return nil
	}
	c, err := course.ParseCourse(*rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored course is corrupt", err)
		return nil
	}
	return c
}

// =============================================================================
// COURSE HANDLERS
// =============================================================================

// ListCourses returns summaries for all courses, each with its progress
// percentage at now - the course-list screen's projection.
func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	now, err := h.requestNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now parameter (use RFC3339)", err)
		return
	}

	records, err := h.Store.ListCourses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list courses", err)
		return
	}

	summaries := make([]CourseSummaryDTO, 0, len(records))
	for _, rec := range records {
		c, err := course.ParseCourse(rec)
		if err != nil {
			continue // skip corrupt records rather than failing the list
		}
		progress, err := engine.Progress(c, now)
		if err != nil {
			continue
		}
		s := CourseSummaryDTO{
			ID:              string(c.ID),
			Title:           c.Title,
			Status:          string(c.Status),
			DurationWeeks:   c.Duration(),
			CompoundCount:   len(c.Compounds),
			PercentComplete: progress.PercentComplete,
		}
		if !c.StartDate.IsZero() {
			s.StartDate = c.StartDate.Format(course.DateLayout)
			s.EndDate = c.EndDate().Format(course.DateLayout)
		}
		summaries = append(summaries, s)
	}
	writeJSON(w, http.StatusOK, summaries)
}

// GetCourse returns a single course in full.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c := h.loadCourse(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(c))
}

// CreateCourse creates a new course from a structured request.
func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	rec, err := h.buildRecord(req, engine.StatusActive)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := h.Store.SaveCourse(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save course", err)
		return
	}

	c, _ := course.ParseCourse(rec)
	writeJSON(w, http.StatusCreated, toCourseDTO(c))
}

// UpdateCourse replaces a course's configuration, keeping its status.
func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	existing := h.loadCourse(w, r)
	if existing == nil {
		return
	}

	var req CourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = string(existing.ID)

	rec, err := h.buildRecord(req, existing.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := h.Store.SaveCourse(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save course", err)
		return
	}

	c, _ := course.ParseCourse(rec)
	writeJSON(w, http.StatusOK, toCourseDTO(c))
}

// DeleteCourse removes a course and its action log.
func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteCourse(r.Context(), id); err != nil {
		if engine.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Course not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete course", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeStatus transitions a course's lifecycle status.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	c := h.loadCourse(w, r)
	if c == nil {
		return
	}

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	next, err := course.Transition(c, course.NormalizeStatus(req.Status))
	if err != nil {
		var te *engine.TransitionError
		if errors.As(err, &te) {
			writeError(w, http.StatusConflict, te.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to change status", err)
		return
	}

	rec, err := course.EncodeCourse(next)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode course", err)
		return
	}
	if err := h.Store.SaveCourse(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save course", err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseDTO(next))
}

// =============================================================================
// ACTION HANDLERS
// =============================================================================

// ListActions returns a course's action log, chronological.
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	c := h.loadCourse(w, r)
	if c == nil {
		return
	}

	actions, err := h.Store.Actions(r.Context(), c.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load actions", err)
		return
	}

	dtos := make([]ActionDTO, len(actions))
	for i, a := range actions {
		dtos[i] = toActionDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LogAction appends one administration to the course log. The class is
// resolved from the compound when a key is given; the quantity defaults
// to the compound's normalized dose when computable.
func (h *Handler) LogAction(w http.ResponseWriter, r *http.Request) {
	c := h.loadCourse(w, r)
	if c == nil {
		return
	}

	var req LogActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	action := engine.LoggedAction{
		ID:       engine.ActionID(uuid.NewString()),
		CourseID: c.ID,
	}

	if req.CompoundKey != "" {
		compound, ok := findCompound(c, engine.CompoundKey(req.CompoundKey))
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown compound key", nil)
			return
		}
		action.CompoundKey = compound.Key
		action.Class = compound.Class
		if req.QuantityMg == nil {
			// Documented choice: aggregate-facing quantity treats an
			// uncomputable dose as zero; the display layer shows "unknown".
			action.Quantity = engine.NormalizeDose(compound.Dose).MgOrZero()
		}
	} else {
		action.Class = course.NormalizeForm(req.Class)
		if req.Class == "" {
			writeError(w, http.StatusBadRequest, "Either compound_key or class is required", nil)
			return
		}
	}

	if req.QuantityMg != nil {
		if *req.QuantityMg < 0 {
			writeError(w, http.StatusBadRequest, "quantity_mg must not be negative", nil)
			return
		}
		action.Quantity = decimal.NewFromFloat(*req.QuantityMg)
	}

	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid timestamp (use RFC3339)", err)
			return
		}
		action.Timestamp = ts
	} else {
		action.Timestamp = h.Now()
	}

	if err := h.Store.Append(r.Context(), action); err != nil {
		if errors.Is(err, engine.ErrDuplicateAction) {
			writeError(w, http.StatusConflict, "Duplicate action id", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to log action", err)
		return
	}
	writeJSON(w, http.StatusCreated, toActionDTO(action))
}

// =============================================================================
// SCHEDULE HANDLER
// =============================================================================

// DescribeCourse returns the composed projection: progress, the next
// occurrence per administration class, and trailing-7-day compliance.
func (h *Handler) DescribeCourse(w http.ResponseWriter, r *http.Request) {
	c := h.loadCourse(w, r)
	if c == nil {
		return
	}

	now, err := h.requestNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now parameter (use RFC3339)", err)
		return
	}

	actions, err := h.Store.Actions(r.Context(), c.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load actions", err)
		return
	}

	desc, err := engine.Describe(c, actions, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to describe course", err)
		return
	}
	writeJSON(w, http.StatusOK, toDescribeDTO(c.ID, now, desc))
}

// =============================================================================
// REQUEST -> RECORD
// =============================================================================

// buildRecord validates a course request at the form boundary and
// serializes it into the stored record shape.
func (h *Handler) buildRecord(req CourseRequest, status engine.CourseStatus) (course.Record, error) {
	if req.Title == "" {
		return course.Record{}, errors.New("title is required")
	}
	if req.StartDate != "" {
		if _, err := time.Parse(course.DateLayout, req.StartDate); err != nil {
			return course.Record{}, errors.New("start_date must be YYYY-MM-DD")
		}
	}
	if req.DurationWeeks < 0 {
		return course.Record{}, errors.New("duration_weeks must not be negative")
	}

	seen := make(map[string]bool)
	for _, compound := range req.Compounds {
		if compound.Key == "" {
			return course.Record{}, errors.New("compound key is required")
		}
		if seen[compound.Key] {
			return course.Record{}, errors.New("compound keys must be unique: " + compound.Key)
		}
		seen[compound.Key] = true
		if err := validateDose(compound.Dose); err != nil {
			return course.Record{}, err
		}
	}
	for key, rec := range req.Schedule {
		if !seen[key] {
			return course.Record{}, errors.New("schedule references unknown compound: " + key)
		}
		if rec.Hour != nil {
			tod := engine.TimeOfDay{Hour: *rec.Hour}
			if rec.Minute != nil {
				tod.Minute = *rec.Minute
			}
			if !tod.Valid() {
				return course.Record{}, errors.New("schedule time out of range for compound: " + key)
			}
		}
	}

	compoundsJSON, err := json.Marshal(req.Compounds)
	if err != nil {
		return course.Record{}, err
	}
	schedule := req.Schedule
	if schedule == nil {
		schedule = map[string]RecurrenceInput{}
	}
	scheduleJSON, err := json.Marshal(schedule)
	if err != nil {
		return course.Record{}, err
	}

	return course.Record{
		ID:            req.ID,
		Title:         req.Title,
		StartDate:     req.StartDate,
		DurationWeeks: req.DurationWeeks,
		Status:        string(status),
		CompoundsJSON: string(compoundsJSON),
		ScheduleJSON:  string(scheduleJSON),
	}, nil
}

// validateDose rejects negative numbers at entry time. The engine itself
// degrades over whatever was persisted; this gate only protects new input.
func validateDose(d *DoseDTO) error {
	if d == nil {
		return nil
	}
	for _, v := range []*float64{d.VolumeML, d.ConcentrationMgPerML, d.Units, d.MgPerUnit} {
		if v != nil && *v < 0 {
			return errors.New("dose values must not be negative")
		}
	}
	return nil
}

func findCompound(c *engine.Course, key engine.CompoundKey) (engine.Compound, bool) {
	for _, compound := range c.Compounds {
		if compound.Key == key {
			return compound, true
		}
	}
	return engine.Compound{}, false
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
