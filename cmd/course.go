package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/zhixue/internal/server"
	"github.com/desertthunder/zhixue/internal/shared"
	"github.com/urfave/cli/v3"
)

func requireCourseID(cmd *cli.Command) (string, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: course id", shared.ErrMissingArgument)
	}
	return id, nil
}

// CourseList prints every catalog course with the learner's overall progress.
func (r *Runner) CourseList(ctx context.Context, cmd *cli.Command) error {
	courses, err := r.courses()
	if err != nil {
		return err
	}
	store, err := r.progressStore()
	if err != nil {
		return err
	}
	calc := r.calculator()

	summaries := make([]server.CourseSummary, 0, courses.Len())
	for _, c := range courses.List() {
		p := store.Load(ctx, c.ID)
		summaries = append(summaries, server.CourseSummary{
			ID:           c.ID,
			Title:        c.Title,
			Instructor:   c.Instructor,
			Category:     c.Category,
			SkillPoints:  c.SkillPoints,
			TotalLessons: c.TotalLessons(),
			Duration:     c.TotalDuration(),
			Progress:     calc.Overall(c, p.LessonProgress),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	r.writePlainHeader(fmt.Sprintf("Courses (%d)", len(summaries)))
	for _, s := range summaries {
		r.writePlain("%-12s %s\n", s.ID, s.Title)
		r.writePlain("             %d lessons · %s · %s %3d%%\n",
			s.TotalLessons, shared.FormatDuration(s.Duration), shared.ProgressBar(s.Progress, 10), s.Progress)
	}
	return nil
}

// CourseShow prints the chapter and lesson outline of one course.
func (r *Runner) CourseShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireCourseID(cmd)
	if err != nil {
		return err
	}
	courses, err := r.courses()
	if err != nil {
		return err
	}
	c, err := courses.Get(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(c, true)
	}

	r.writePlainHeader(c.Title)
	if c.Instructor != "" {
		r.writePlain("Instructor: %s\n", c.Instructor)
	}
	if c.Category != "" {
		r.writePlain("Category: %s\n", c.Category)
	}
	r.writePlain("Skill points: %d\n", c.SkillPoints)
	if c.Description != "" {
		r.writePlainln("%s", c.Description)
	}
	for ci, ch := range c.Chapters {
		r.writePlain("\n%d. %s\n", ci+1, ch.Title)
		for li, l := range ch.Lessons {
			r.writePlain("   %d.%d %-40s %s\n", ci+1, li+1, l.Title, shared.FormatDuration(l.Duration))
		}
	}
	return nil
}
