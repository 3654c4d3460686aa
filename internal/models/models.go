// package models defines the data model for the learning tracker
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lesson is a single playable video within a chapter.
type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	VideoURL string `json:"videoUrl"`
	Duration int    `json:"duration"` // seconds
}

// Chapter is an ordered group of lessons.
type Chapter struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// Course is a catalog entry. The tracker treats it as read-only.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Instructor  string    `json:"instructor,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	SkillPoints int       `json:"skillPoints"` // price in platform skill points
	Chapters    []Chapter `json:"chapters"`
}

// TotalLessons sums lesson counts across all chapters.
func (c *Course) TotalLessons() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, ch := range c.Chapters {
		total += len(ch.Lessons)
	}
	return total
}

// TotalDuration sums lesson durations in seconds.
func (c *Course) TotalDuration() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, ch := range c.Chapters {
		for _, l := range ch.Lessons {
			total += l.Duration
		}
	}
	return total
}

// Position addresses a lesson by chapter and lesson index.
type Position struct {
	Chapter int
	Lesson  int
}

// Key returns the lesson progress key for p.
func (p Position) Key() string {
	return LessonKey(p.Chapter, p.Lesson)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Chapter, p.Lesson)
}

// LessonKey formats the "chapterIndex-lessonIndex" key used in [CourseProgress.LessonProgress].
func LessonKey(chapter, lesson int) string {
	return strconv.Itoa(chapter) + "-" + strconv.Itoa(lesson)
}

// ParseLessonKey is the inverse of [LessonKey].
func ParseLessonKey(key string) (Position, error) {
	a, b, ok := strings.Cut(key, "-")
	if !ok {
		return Position{}, fmt.Errorf("invalid lesson key %q", key)
	}
	ch, err := strconv.Atoi(a)
	if err != nil || ch < 0 {
		return Position{}, fmt.Errorf("invalid chapter in lesson key %q", key)
	}
	ls, err := strconv.Atoi(b)
	if err != nil || ls < 0 {
		return Position{}, fmt.Errorf("invalid lesson in lesson key %q", key)
	}
	return Position{Chapter: ch, Lesson: ls}, nil
}

// CourseProgress is the per-course learner state persisted under course-progress-{courseId}.
type CourseProgress struct {
	CurrentChapter int                `json:"currentChapter"`
	CurrentLesson  int                `json:"currentLesson"`
	LessonProgress map[string]float64 `json:"lessonProgress"` // elapsed seconds keyed by LessonKey
	LastPosition   float64            `json:"lastPosition"`   // seconds into the current lesson
	Progress       int                `json:"progress"`       // 0..100
	LastAccessTime time.Time          `json:"lastAccessTime"`
}

// NewCourseProgress returns the zeroed default state stamped with now.
func NewCourseProgress(now time.Time) CourseProgress {
	return CourseProgress{
		LessonProgress: map[string]float64{},
		LastAccessTime: now.UTC(),
	}
}

// Position returns the current chapter/lesson pair.
func (p CourseProgress) Position() Position {
	return Position{Chapter: p.CurrentChapter, Lesson: p.CurrentLesson}
}

// Elapsed returns the recorded seconds for a lesson, zero when never visited.
func (p CourseProgress) Elapsed(pos Position) float64 {
	return p.LessonProgress[pos.Key()]
}

// Clone returns a deep copy so callers can hold a snapshot while the original keeps changing.
func (p CourseProgress) Clone() CourseProgress {
	out := p
	out.LessonProgress = make(map[string]float64, len(p.LessonProgress))
	for k, v := range p.LessonProgress {
		out.LessonProgress[k] = v
	}
	return out
}
