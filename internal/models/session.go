package models

import (
	"errors"
	"fmt"
	"time"
)

// SessionStatus is the lifecycle state of a learning [Session].
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionEnded     SessionStatus = "ended"
	SessionCompleted SessionStatus = "completed" // the course reached 100% during the session
)

// Session records one sitting with the player: when it ran and how much progress it made.
type Session struct {
	ID               string
	Sequence         int
	CourseID         string
	Status           SessionStatus
	StartProgress    int
	EndProgress      int
	LessonsCompleted int
	StartedAt        time.Time
	EndedAt          *time.Time
	UpdatedAt        time.Time
}

// NewSession starts an active session for courseID.
func NewSession(courseID string, startProgress int, now time.Time) *Session {
	now = now.UTC()
	return &Session{
		CourseID:      courseID,
		Status:        SessionActive,
		StartProgress: startProgress,
		EndProgress:   startProgress,
		StartedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks the session's fields.
func (s *Session) Validate() error {
	if s.CourseID == "" {
		return errors.New("course id is required")
	}
	switch s.Status {
	case SessionActive, SessionEnded, SessionCompleted:
	default:
		return fmt.Errorf("invalid session status %q", s.Status)
	}
	if s.StartProgress < 0 || s.StartProgress > 100 || s.EndProgress < 0 || s.EndProgress > 100 {
		return errors.New("progress must be between 0 and 100")
	}
	if s.LessonsCompleted < 0 {
		return errors.New("lessons completed must not be negative")
	}
	return nil
}

// Finish closes the session with the final overall progress.
func (s *Session) Finish(endProgress, lessonsCompleted int, now time.Time) {
	now = now.UTC()
	s.EndProgress = endProgress
	s.LessonsCompleted = lessonsCompleted
	s.EndedAt = &now
	s.UpdatedAt = now
	s.Status = SessionEnded
	if endProgress >= 100 {
		s.Status = SessionCompleted
	}
}

// Duration returns how long the session ran, or zero while it is active.
func (s *Session) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}
