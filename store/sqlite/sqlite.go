/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements store.CourseStore and store.ActionLog using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

APPEND-ONLY ENFORCEMENT:
  The action log is append-only:
  - No UPDATE statements on the actions table
  - No DELETE statements on the actions table (except cascading with an
    explicit course deletion)
  - Corrections are new rows

KEY TABLES:
  courses:  Flat course records; compounds and schedule are JSON columns,
            deserialized by course.ParseCourse at the boundary
  actions:  Immutable log of actual administrations

INDEXES:
  idx_actions_course_date: Compliance window reads (hot path)

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  st, err := sqlite.New("./data/courses.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/doseplan/course-engine/course"
	"github.com/doseplan/course-engine/engine"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer, and a ":memory:" database exists per
	// connection. One pooled connection covers both.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Courses (flat records; compounds/schedule are JSON columns)
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		duration_weeks INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		compounds TEXT NOT NULL DEFAULT '[]',
		schedule TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	-- Actions (append-only log of actual administrations)
	CREATE TABLE IF NOT EXISTS actions (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		compound_key TEXT NOT NULL DEFAULT '',
		class TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		quantity TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_actions_course_date
		ON actions(course_id, occurred_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// COURSE STORE
// =============================================================================

func (s *Store) SaveCourse(ctx context.Context, rec course.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (id, title, start_date, duration_weeks, status, compounds, schedule)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			start_date = excluded.start_date,
			duration_weeks = excluded.duration_weeks,
			status = excluded.status,
			compounds = excluded.compounds,
			schedule = excluded.schedule,
			updated_at = datetime('now')`,
		rec.ID, rec.Title, rec.StartDate, rec.DurationWeeks, rec.Status,
		rec.CompoundsJSON, rec.ScheduleJSON)
	return err
}

func (s *Store) GetCourse(ctx context.Context, id string) (*course.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, start_date, duration_weeks, status, compounds, schedule
		FROM courses WHERE id = ?`, id)

	var rec course.Record
	err := row.Scan(&rec.ID, &rec.Title, &rec.StartDate, &rec.DurationWeeks,
		&rec.Status, &rec.CompoundsJSON, &rec.ScheduleJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]course.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, start_date, duration_weeks, status, compounds, schedule
		FROM courses ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []course.Record
	for rows.Next() {
		var rec course.Record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.StartDate, &rec.DurationWeeks,
			&rec.Status, &rec.CompoundsJSON, &rec.ScheduleJSON); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrCourseNotFound
	}
	return nil
}

// =============================================================================
// ACTION LOG - append-only
// =============================================================================

func (s *Store) Append(ctx context.Context, a engine.LoggedAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID != "" {
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM actions WHERE id = ?`, string(a.ID)).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			return engine.ErrDuplicateAction
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, course_id, compound_key, class, occurred_at, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(a.ID), string(a.CourseID), string(a.CompoundKey), string(a.Class),
		a.Timestamp.UTC().Format(time.RFC3339), a.Quantity.String())
	return err
}

func (s *Store) Actions(ctx context.Context, courseID engine.CourseID) ([]engine.LoggedAction, error) {
	return s.queryActions(ctx, `
		SELECT id, course_id, compound_key, class, occurred_at, quantity
		FROM actions WHERE course_id = ? ORDER BY occurred_at, id`,
		string(courseID))
}

func (s *Store) ActionsInRange(ctx context.Context, courseID engine.CourseID, from, to time.Time) ([]engine.LoggedAction, error) {
	return s.queryActions(ctx, `
		SELECT id, course_id, compound_key, class, occurred_at, quantity
		FROM actions WHERE course_id = ? AND occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at, id`,
		string(courseID), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func (s *Store) queryActions(ctx context.Context, query string, args ...any) ([]engine.LoggedAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []engine.LoggedAction
	for rows.Next() {
		var (
			a        engine.LoggedAction
			id       string
			courseID string
			key      string
			class    string
			at       string
			quantity string
		)
		if err := rows.Scan(&id, &courseID, &key, &class, &at, &quantity); err != nil {
			return nil, err
		}
		a.ID = engine.ActionID(id)
		a.CourseID = engine.CourseID(courseID)
		a.CompoundKey = engine.CompoundKey(key)
		a.Class = engine.AdministrationClass(class)
		if ts, err := time.Parse(time.RFC3339, at); err == nil {
			a.Timestamp = ts
		}
		if q, err := decimal.NewFromString(quantity); err == nil {
			a.Quantity = q
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Reset drops all data. Dev/demo only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM actions; DELETE FROM courses;`)
	return err
}
