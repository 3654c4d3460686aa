// Package course resolves and advances lesson positions within a [models.Course].
//
// All functions treat the course as read-only and never panic on bad indices;
// out-of-range positions surface as [shared.ErrLessonUnavailable].
package course

import (
	"fmt"

	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
)

// ResolveLesson returns the lesson at the given indices.
func ResolveLesson(c *models.Course, chapter, lesson int) (*models.Lesson, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: no course", shared.ErrLessonUnavailable)
	}
	if chapter < 0 || chapter >= len(c.Chapters) {
		return nil, fmt.Errorf("%w: chapter %d of %d in %s", shared.ErrLessonUnavailable, chapter, len(c.Chapters), c.ID)
	}
	lessons := c.Chapters[chapter].Lessons
	if lesson < 0 || lesson >= len(lessons) {
		return nil, fmt.Errorf("%w: lesson %d of %d in chapter %d of %s", shared.ErrLessonUnavailable, lesson, len(lessons), chapter, c.ID)
	}
	return &lessons[lesson], nil
}

// Resolve is [ResolveLesson] for a [models.Position].
func Resolve(c *models.Course, pos models.Position) (*models.Lesson, error) {
	return ResolveLesson(c, pos.Chapter, pos.Lesson)
}

// Valid reports whether pos addresses an existing lesson.
func Valid(c *models.Course, pos models.Position) bool {
	_, err := Resolve(c, pos)
	return err == nil
}

// Advance returns the lesson after pos: the next lesson in the same chapter, else the first
// lesson of the next non-empty chapter. ok is false at the end of the course.
//
// A negative lesson index is treated as -1, so {Chapter: n, Lesson: -1} yields the first lesson of chapter n.
func Advance(c *models.Course, pos models.Position) (next models.Position, ok bool) {
	if c == nil {
		return models.Position{}, false
	}
	pos.Lesson = max(pos.Lesson, -1)
	if pos.Chapter >= 0 && pos.Chapter < len(c.Chapters) && pos.Lesson+1 < len(c.Chapters[pos.Chapter].Lessons) {
		return models.Position{Chapter: pos.Chapter, Lesson: pos.Lesson + 1}, true
	}
	for ch := pos.Chapter + 1; ch < len(c.Chapters); ch++ {
		if ch >= 0 && len(c.Chapters[ch].Lessons) > 0 {
			return models.Position{Chapter: ch, Lesson: 0}, true
		}
	}
	return models.Position{}, false
}

// ShouldAdvance reports whether playback at position has reached the end of a lesson of the given duration.
//
// A lesson ends one second before its duration, matching when players stop firing time updates.
func ShouldAdvance(position, duration float64) bool {
	return duration > 0 && position >= duration-1
}

// Clamp returns pos when it is valid, otherwise the first lesson of the course.
func Clamp(c *models.Course, pos models.Position) (models.Position, bool) {
	if Valid(c, pos) {
		return pos, true
	}
	return models.Position{}, false
}

// Lessons walks the course in order and calls fn with each lesson and its position.
func Lessons(c *models.Course, fn func(pos models.Position, l *models.Lesson)) {
	if c == nil {
		return
	}
	for ci := range c.Chapters {
		for li := range c.Chapters[ci].Lessons {
			fn(models.Position{Chapter: ci, Lesson: li}, &c.Chapters[ci].Lessons[li])
		}
	}
}
