package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
)

// SessionRepository persists [models.Session] history.
//
// Handles session CRUD operations with soft delete support and course/status queries.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SessionCriteria narrows [SessionRepository.List]. Zero values match everything.
type SessionCriteria struct {
	CourseID string
	Status   models.SessionStatus
	Limit    int
}

const sessionColumns = `
	id, sequence, course_id, status, start_progress, end_progress,
	lessons_completed, started_at, ended_at, updated_at
`

// Create inserts a new session with a generated ID and sequence
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(ctx, r.db, "sessions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO sessions (
			id, sequence, course_id, status, start_progress, end_progress,
			lessons_completed, started_at, ended_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		s.CourseID,
		s.Status,
		s.StartProgress,
		s.EndProgress,
		s.LessonsCompleted,
		s.StartedAt,
		nullTime(s.EndedAt),
		s.StartedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	s.ID = id
	s.Sequence = sequence
	return nil
}

// Get retrieves a session by ID, excluding soft-deleted sessions
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ? AND deleted_at IS NULL`

	s, err := scanSession(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return s, err
}

// Update writes the mutable fields of an existing session
func (r *SessionRepository) Update(ctx context.Context, s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	query := `
		UPDATE sessions
		SET status = ?, end_progress = ?, lessons_completed = ?, ended_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		s.Status,
		s.EndProgress,
		s.LessonsCompleted,
		nullTime(s.EndedAt),
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return requireRow(result, s.ID)
}

// Delete soft-deletes a session by ID
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE sessions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return requireRow(result, id)
}

// List retrieves sessions matching criteria, newest first
func (r *SessionRepository) List(ctx context.Context, criteria SessionCriteria) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE deleted_at IS NULL`
	args := []any{}

	if criteria.CourseID != "" {
		query += " AND course_id = ?"
		args = append(args, criteria.CourseID)
	}

	if criteria.Status != "" {
		query += " AND status = ?"
		args = append(args, criteria.Status)
	}

	query += " ORDER BY sequence DESC"

	if criteria.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, criteria.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return sessions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSession scans a [sql.Row] or [sql.Rows] into a [models.Session]
func scanSession(row scanner) (*models.Session, error) {
	var (
		s       models.Session
		status  string
		endedAt sql.NullTime
	)

	err := row.Scan(
		&s.ID, &s.Sequence, &s.CourseID, &status, &s.StartProgress, &s.EndProgress,
		&s.LessonsCompleted, &s.StartedAt, &endedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	s.Status = models.SessionStatus(status)
	if endedAt.Valid {
		at := endedAt.Time
		s.EndedAt = &at
	}
	return &s, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found or already deleted: %s", id)
	}
	return nil
}
