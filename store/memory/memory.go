// Package memory provides an in-memory Store implementation (for
// testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/doseplan/course-engine/course"
	"github.com/doseplan/course-engine/engine"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	courses map[string]course.Record
	actions map[engine.CourseID][]engine.LoggedAction
	ids     map[engine.ActionID]bool
}

func New() *Memory {
	return &Memory{
		courses: make(map[string]course.Record),
		actions: make(map[engine.CourseID][]engine.LoggedAction),
		ids:     make(map[engine.ActionID]bool),
	}
}

// -----------------------------------------------------------------------------
// CourseStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveCourse(_ context.Context, rec course.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[rec.ID] = rec
	return nil
}

func (m *Memory) GetCourse(_ context.Context, id string) (*course.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) ListCourses(_ context.Context) ([]course.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]course.Record, 0, len(m.courses))
	for _, rec := range m.courses {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteCourse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[id]; !ok {
		return engine.ErrCourseNotFound
	}
	delete(m.courses, id)
	for _, a := range m.actions[engine.CourseID(id)] {
		delete(m.ids, a.ID)
	}
	delete(m.actions, engine.CourseID(id))
	return nil
}

// -----------------------------------------------------------------------------
// ActionLog - append-only
// -----------------------------------------------------------------------------

func (m *Memory) Append(_ context.Context, a engine.LoggedAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID != "" && m.ids[a.ID] {
		return engine.ErrDuplicateAction
	}

	actions := m.actions[a.CourseID]

	// Binary search keeps the log chronologically sorted on insert.
	i := sort.Search(len(actions), func(i int) bool {
		return actions[i].Timestamp.After(a.Timestamp)
	})
	actions = append(actions, engine.LoggedAction{})
	copy(actions[i+1:], actions[i:])
	actions[i] = a
	m.actions[a.CourseID] = actions

	if a.ID != "" {
		m.ids[a.ID] = true
	}
	return nil
}

func (m *Memory) Actions(_ context.Context, courseID engine.CourseID) ([]engine.LoggedAction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	actions := m.actions[courseID]
	out := make([]engine.LoggedAction, len(actions))
	copy(out, actions)
	return out, nil
}

func (m *Memory) ActionsInRange(_ context.Context, courseID engine.CourseID, from, to time.Time) ([]engine.LoggedAction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.LoggedAction
	for _, a := range m.actions[courseID] {
		if a.Timestamp.Before(from) {
			continue
		}
		if a.Timestamp.After(to) {
			break
		}
		out = append(out, a)
	}
	return out, nil
}
