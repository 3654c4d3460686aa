package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/zhixue/internal/notify"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
	"github.com/desertthunder/zhixue/internal/ui"
	"github.com/urfave/cli/v3"
)

// Learn launches the interactive player. With a course ID the player opens that course directly.
func (r *Runner) Learn(ctx context.Context, cmd *cli.Command) error {
	courses, err := r.courses()
	if err != nil {
		return err
	}

	courseID := cmd.StringArg("id")
	if courseID != "" {
		if _, err := courses.Get(courseID); err != nil {
			return err
		}
	}
	ephemeral := cmd.Bool("ephemeral")

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if err := shared.ApplyLogLevel(fileLogger, r.config.Log.Level); err != nil {
		return err
	}
	r.SetLogger(fileLogger)

	var store *progress.Store
	if ephemeral {
		store = progress.NewStore(progress.StoreOpts{Logger: shared.WithLogger(fileLogger, "component", "progress")})
	} else if store, err = r.progressStore(); err != nil {
		return err
	}

	center := notify.NewCenter(notify.CenterOpts{Logger: shared.WithLogger(fileLogger, "component", "notify")})
	centerCtx, stopCenter := context.WithCancel(ctx)
	defer stopCenter()
	center.Start(centerCtx)
	defer center.Close()

	model := ui.NewModel(ctx, ui.Options{
		Catalog:      courses,
		Store:        store,
		Calculator:   r.calculator(),
		Center:       center,
		Logger:       shared.WithLogger(fileLogger, "component", "player"),
		SaveInterval: r.config.Player.Interval(),
		SeekStep:     float64(r.config.Player.SeekStep),
		Volume:       r.config.Player.Volume,
	}, courseID)

	started := time.Now()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()
	model.Close()

	res := model.Result()
	if runErr != nil {
		return fmt.Errorf("error running TUI: %w", runErr)
	}
	if res.Err != nil {
		return res.Err
	}
	if res.CourseID == "" {
		return nil
	}

	if !ephemeral {
		session, err := r.recordSession(ctx, started, res)
		if err != nil {
			return err
		}
		fileLogger.Info("session recorded", "id", session.ID, "sequence", session.Sequence)
	}

	return r.writePlain("%s: %d%% → %d%% (%d lessons completed)\n",
		res.CourseID, res.StartProgress, res.EndProgress, res.LessonsCompleted)
}
