package progress

import (
	"testing"

	"github.com/desertthunder/zhixue/internal/models"
)

func scenarioCourse() *models.Course {
	return &models.Course{
		ID: "course-001",
		Chapters: []models.Chapter{
			{Lessons: []models.Lesson{{ID: "a", Duration: 100}, {ID: "b", Duration: 200}}},
			{Lessons: []models.Lesson{{ID: "c", Duration: 50}}},
		},
	}
}

func TestOverallProgress(t *testing.T) {
	tc := []struct {
		name     string
		course   *models.Course
		progress map[string]float64
		want     int
	}{
		{
			name:     "two of three lessons touched",
			course:   scenarioCourse(),
			progress: map[string]float64{"0-0": 10, "0-1": 1},
			want:     67,
		},
		{
			name:     "zero elapsed does not count",
			course:   scenarioCourse(),
			progress: map[string]float64{"0-0": 10, "0-1": 0},
			want:     33,
		},
		{
			name:     "all lessons",
			course:   scenarioCourse(),
			progress: map[string]float64{"0-0": 1, "0-1": 1, "1-0": 1},
			want:     100,
		},
		{
			name:     "unknown keys ignored",
			course:   scenarioCourse(),
			progress: map[string]float64{"0-0": 1, "5-5": 1, "junk": 3},
			want:     33,
		},
		{
			name:     "empty progress",
			course:   scenarioCourse(),
			progress: map[string]float64{},
			want:     0,
		},
		{
			name:     "course without lessons",
			course:   &models.Course{Chapters: []models.Chapter{{}}},
			progress: map[string]float64{"0-0": 5},
			want:     0,
		},
		{
			name:     "nil course",
			course:   nil,
			progress: nil,
			want:     0,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallProgress(tt.course, tt.progress); got != tt.want {
				t.Errorf("OverallProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculatorThreshold(t *testing.T) {
	calc := Calculator{Threshold: 0.9}
	c := scenarioCourse()

	tc := []struct {
		name     string
		progress map[string]float64
		want     int
	}{
		{name: "partial watch does not count", progress: map[string]float64{"0-0": 50}, want: 0},
		{name: "threshold reached", progress: map[string]float64{"0-0": 90}, want: 1},
		{name: "mixed", progress: map[string]float64{"0-0": 95, "0-1": 100, "1-0": 45}, want: 2},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := calc.Completed(c, tt.progress); got != tt.want {
				t.Errorf("Completed() = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("unknown duration counts when touched", func(t *testing.T) {
		if !calc.IsComplete(&models.Lesson{}, 1) {
			t.Error("expected lesson without duration to count once touched")
		}
		if calc.IsComplete(&models.Lesson{}, 0) {
			t.Error("expected untouched lesson not to count")
		}
	})
}
