package main

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/desertthunder/zhixue/internal/formatter"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
	"github.com/desertthunder/zhixue/internal/tasks"
	"github.com/urfave/cli/v3"
)

// progressEntry is one row of `progress list`.
type progressEntry struct {
	CourseID       string    `json:"courseId"`
	Title          string    `json:"title"`
	Progress       int       `json:"progress"`
	LastAccessTime time.Time `json:"lastAccessTime"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// report loads the saved progress for id and flattens it into a [formatter.Report].
func (r *Runner) report(ctx context.Context, id string) (*formatter.Report, error) {
	courses, err := r.courses()
	if err != nil {
		return nil, err
	}
	c, err := courses.Get(id)
	if err != nil {
		return nil, err
	}
	store, err := r.progressStore()
	if err != nil {
		return nil, err
	}
	return formatter.NewReport(c, store.Load(ctx, id), r.calculator()), nil
}

// ProgressShow prints per-lesson progress for a course.
func (r *Runner) ProgressShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireCourseID(cmd)
	if err != nil {
		return err
	}
	rep, err := r.report(ctx, id)
	if err != nil {
		return err
	}

	format := formatter.FormatText
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}
	data, err := formatter.Export(rep, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// ProgressList prints every course that has saved progress.
func (r *Runner) ProgressList(ctx context.Context, cmd *cli.Command) error {
	courses, err := r.courses()
	if err != nil {
		return err
	}
	store, err := r.progressStore()
	if err != nil {
		return err
	}
	kv, err := r.kv()
	if err != nil {
		return err
	}
	ids, err := store.Courses(ctx)
	if err != nil {
		return err
	}

	calc := r.calculator()
	entries := make([]progressEntry, 0, len(ids))
	for _, id := range ids {
		p := store.Load(ctx, id)
		entry := progressEntry{CourseID: id, Progress: p.Progress, LastAccessTime: p.LastAccessTime}
		if at, err := kv.UpdatedAt(ctx, progress.Key(id)); err == nil {
			entry.UpdatedAt = at
		} else {
			r.logger.Warn("failed to read progress timestamp", "course", id, "err", err)
		}
		if c, err := courses.Get(id); err == nil {
			entry.Title = c.Title
			entry.Progress = calc.Overall(c, p.LessonProgress)
		} else {
			r.logger.Warn("saved progress for unknown course", "course", id)
		}
		entries = append(entries, entry)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	if len(entries) == 0 {
		return r.writePlain("No saved progress.\n")
	}
	for _, e := range entries {
		r.writePlain("%-12s %s %3d%%  %-16s  %-16s  %s\n",
			e.CourseID, shared.ProgressBar(e.Progress, 10), e.Progress, stamp(e.LastAccessTime), stamp(e.UpdatedAt), e.Title)
	}
	return nil
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// ProgressReset deletes saved progress for a course.
func (r *Runner) ProgressReset(ctx context.Context, cmd *cli.Command) error {
	id, err := requireCourseID(cmd)
	if err != nil {
		return err
	}
	store, err := r.progressStore()
	if err != nil {
		return err
	}
	if err := store.Reset(ctx, id); err != nil {
		return err
	}
	r.logger.Info("progress reset", "course", id)
	return r.writePlain("✓ Progress reset for %s\n", id)
}

// ProgressExport writes a progress report to a file or stdout.
func (r *Runner) ProgressExport(ctx context.Context, cmd *cli.Command) error {
	id, err := requireCourseID(cmd)
	if err != nil {
		return err
	}
	format := cmd.String("format")
	output := cmd.String("output")

	rep, err := r.report(ctx, id)
	if err != nil {
		return err
	}

	if output == "-" || cmd.Bool("clipboard") {
		data, err := formatter.Export(rep, format)
		if err != nil {
			return err
		}
		if output == "-" {
			return r.writePlain("%s", data)
		}
		if clipboard.Unsupported {
			return fmt.Errorf("%w: no clipboard utility available", shared.ErrInvalidFlag)
		}
		if err := clipboard.WriteAll(string(data)); err != nil {
			return fmt.Errorf("failed to copy report: %w", err)
		}
		return r.writePlain("✓ Copied %s progress to the clipboard\n", id)
	}

	path, err := formatter.WriteExport(rep, format, output)
	if err != nil {
		return fmt.Errorf("failed to export progress: %w", err)
	}
	r.logger.Info("exported progress", "course", id, "format", format, "path", path)
	return r.writePlain("✓ Exported %s progress to %s\n", id, path)
}

// ProgressExportAll writes reports for every course with saved progress plus a manifest.
func (r *Runner) ProgressExportAll(ctx context.Context, cmd *cli.Command) error {
	courses, err := r.courses()
	if err != nil {
		return err
	}
	store, err := r.progressStore()
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", update.Message)
		}
	}()

	engine := tasks.NewReportEngine(courses, store, r.calculator())
	result, err := engine.BulkExport(ctx, progressCh, nil, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalCourses)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d\n", result.FailedExports)
	}
	return nil
}
