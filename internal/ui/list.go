package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
)

var (
	_ list.Item = courseItem{}
	_ list.Item = lessonItem{}
)

// courseItem wraps [models.Course] to implement [list.Item].
type courseItem struct {
	course   *models.Course
	progress int
}

func (i courseItem) FilterValue() string { return i.course.Title }
func (i courseItem) Title() string       { return i.course.Title }
func (i courseItem) Description() string {
	desc := fmt.Sprintf("%d lessons • %s • %d%%",
		i.course.TotalLessons(), shared.FormatDuration(i.course.TotalDuration()), i.progress)
	if i.course.Instructor != "" {
		desc = fmt.Sprintf("%s • %s", i.course.Instructor, desc)
	}
	return desc
}

// lessonItem is one row of the chapter outline.
type lessonItem struct {
	pos      models.Position
	chapter  string
	lesson   models.Lesson
	elapsed  float64
	complete bool
	current  bool
}

func (i lessonItem) FilterValue() string { return i.lesson.Title }
func (i lessonItem) Title() string {
	mark := " "
	switch {
	case i.current:
		mark = "▶"
	case i.complete:
		mark = "✓"
	}
	return fmt.Sprintf("%s %d.%d %s", mark, i.pos.Chapter+1, i.pos.Lesson+1, i.lesson.Title)
}
func (i lessonItem) Description() string {
	return fmt.Sprintf("%s • %s / %s", i.chapter,
		shared.FormatDuration(int(i.elapsed)), shared.FormatDuration(i.lesson.Duration))
}
