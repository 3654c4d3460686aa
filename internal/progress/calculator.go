package progress

import (
	"math"

	"github.com/desertthunder/zhixue/internal/course"
	"github.com/desertthunder/zhixue/internal/models"
)

// Calculator derives course completion from per-lesson elapsed seconds.
//
// Threshold is the fraction of a lesson's duration that must be watched for it to count.
// Zero counts any lesson with recorded time, as does any lesson without a known duration.
type Calculator struct {
	Threshold float64
}

// IsComplete reports whether elapsed seconds complete lesson l.
func (c Calculator) IsComplete(l *models.Lesson, elapsed float64) bool {
	if elapsed <= 0 {
		return false
	}
	if c.Threshold <= 0 || l == nil || l.Duration <= 0 {
		return true
	}
	return elapsed >= c.Threshold*float64(l.Duration)
}

// Completed counts lessons of cr that lessonProgress marks complete.
// Keys that do not address a lesson in the course are ignored.
func (c Calculator) Completed(cr *models.Course, lessonProgress map[string]float64) int {
	done := 0
	for key, elapsed := range lessonProgress {
		pos, err := models.ParseLessonKey(key)
		if err != nil {
			continue
		}
		l, err := course.Resolve(cr, pos)
		if err != nil {
			continue
		}
		if c.IsComplete(l, elapsed) {
			done++
		}
	}
	return done
}

// Overall returns round(100 * completed / total), or 0 for a course without lessons.
func (c Calculator) Overall(cr *models.Course, lessonProgress map[string]float64) int {
	total := cr.TotalLessons()
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(c.Completed(cr, lessonProgress)) / float64(total)))
}

// OverallProgress applies the default "any recorded time" rule.
func OverallProgress(cr *models.Course, lessonProgress map[string]float64) int {
	return Calculator{}.Overall(cr, lessonProgress)
}
