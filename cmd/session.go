package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/zhixue/internal/formatter"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/repositories"
	"github.com/desertthunder/zhixue/internal/shared"
	"github.com/desertthunder/zhixue/internal/ui"
	"github.com/urfave/cli/v3"
)

// SessionList prints recorded learning sessions.
func (r *Runner) SessionList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	if limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidFlag)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	sessions, err := repositories.NewSessionRepository(db).List(ctx, repositories.SessionCriteria{
		CourseID: cmd.String("course"),
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sessions, true)
	}
	return r.writePlain("%s", formatter.FormatSessions(sessions))
}

// recordSession persists a finished learning session.
func (r *Runner) recordSession(ctx context.Context, started time.Time, res ui.Result) (*models.Session, error) {
	if res.CourseID == "" {
		return nil, nil
	}
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	s := models.NewSession(res.CourseID, res.StartProgress, started)
	s.Finish(res.EndProgress, res.LessonsCompleted, time.Now())

	if err := repositories.NewSessionRepository(db).Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to record session: %w", err)
	}
	return s, nil
}
