package course

import (
	"errors"
	"testing"

	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
)

func twoChapterCourse() *models.Course {
	return &models.Course{
		ID: "course-001",
		Chapters: []models.Chapter{
			{Title: "One", Lessons: []models.Lesson{{ID: "A", Duration: 60}, {ID: "B", Duration: 90}}},
			{Title: "Two", Lessons: []models.Lesson{{ID: "C", Duration: 30}}},
		},
	}
}

func TestResolveLesson(t *testing.T) {
	c := twoChapterCourse()

	tc := []struct {
		name    string
		chapter int
		lesson  int
		wantID  string
		wantErr bool
	}{
		{name: "first", chapter: 0, lesson: 0, wantID: "A"},
		{name: "second in chapter", chapter: 0, lesson: 1, wantID: "B"},
		{name: "next chapter", chapter: 1, lesson: 0, wantID: "C"},
		{name: "lesson out of range", chapter: 1, lesson: 1, wantErr: true},
		{name: "chapter out of range", chapter: 2, lesson: 0, wantErr: true},
		{name: "negative chapter", chapter: -1, lesson: 0, wantErr: true},
		{name: "negative lesson", chapter: 0, lesson: -1, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLesson(c, tt.chapter, tt.lesson)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrLessonUnavailable) {
					t.Fatalf("expected ErrLessonUnavailable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("expected lesson %s, got %s", tt.wantID, got.ID)
			}
		})
	}

	t.Run("nil course", func(t *testing.T) {
		if _, err := ResolveLesson(nil, 0, 0); !errors.Is(err, shared.ErrLessonUnavailable) {
			t.Errorf("expected ErrLessonUnavailable, got %v", err)
		}
	})
}

func TestAdvance(t *testing.T) {
	t.Run("walks to end of course", func(t *testing.T) {
		c := twoChapterCourse()
		pos := models.Position{}
		want := []models.Position{{Chapter: 0, Lesson: 1}, {Chapter: 1, Lesson: 0}}

		for i, w := range want {
			next, ok := Advance(c, pos)
			if !ok {
				t.Fatalf("step %d: unexpected end of course", i)
			}
			if next != w {
				t.Fatalf("step %d: expected %v, got %v", i, w, next)
			}
			pos = next
		}

		if _, ok := Advance(c, pos); ok {
			t.Error("expected end of course after the last lesson")
		}
	})

	t.Run("skips empty chapters", func(t *testing.T) {
		c := &models.Course{Chapters: []models.Chapter{
			{Lessons: []models.Lesson{{ID: "A"}}},
			{},
			{Lessons: []models.Lesson{{ID: "B"}}},
		}}

		next, ok := Advance(c, models.Position{})
		if !ok || next != (models.Position{Chapter: 2, Lesson: 0}) {
			t.Errorf("expected (2,0), got %v ok=%v", next, ok)
		}
	})

	t.Run("negative lesson starts the chapter", func(t *testing.T) {
		c := twoChapterCourse()
		tc := []struct {
			pos  models.Position
			want models.Position
		}{
			{pos: models.Position{Chapter: 0, Lesson: -1}, want: models.Position{Chapter: 0, Lesson: 0}},
			{pos: models.Position{Chapter: 0, Lesson: -5}, want: models.Position{Chapter: 0, Lesson: 0}},
			{pos: models.Position{Chapter: 1, Lesson: -2}, want: models.Position{Chapter: 1, Lesson: 0}},
		}
		for _, tt := range tc {
			next, ok := Advance(c, tt.pos)
			if !ok || next != tt.want {
				t.Errorf("Advance(%v) = %v, %v; want %v", tt.pos, next, ok, tt.want)
			}
			if !Valid(c, next) {
				t.Errorf("Advance(%v) returned invalid position %v", tt.pos, next)
			}
		}
	})

	t.Run("nil course", func(t *testing.T) {
		if _, ok := Advance(nil, models.Position{}); ok {
			t.Error("expected end of course for nil course")
		}
	})
}

func TestShouldAdvance(t *testing.T) {
	tc := []struct {
		name     string
		position float64
		duration float64
		want     bool
	}{
		{name: "start", position: 0, duration: 60, want: false},
		{name: "just before", position: 58.9, duration: 60, want: false},
		{name: "one second left", position: 59, duration: 60, want: true},
		{name: "past end", position: 61, duration: 60, want: true},
		{name: "unknown duration", position: 10, duration: 0, want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldAdvance(tt.position, tt.duration); got != tt.want {
				t.Errorf("ShouldAdvance(%v, %v) = %v, want %v", tt.position, tt.duration, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	c := twoChapterCourse()

	if pos, ok := Clamp(c, models.Position{Chapter: 1, Lesson: 0}); !ok || pos != (models.Position{Chapter: 1}) {
		t.Errorf("expected valid position to pass through, got %v ok=%v", pos, ok)
	}

	if pos, ok := Clamp(c, models.Position{Chapter: 5, Lesson: 3}); ok || pos != (models.Position{}) {
		t.Errorf("expected invalid position to reset to origin, got %v ok=%v", pos, ok)
	}
}

func TestLessons(t *testing.T) {
	var ids []string
	Lessons(twoChapterCourse(), func(pos models.Position, l *models.Lesson) {
		ids = append(ids, pos.Key()+":"+l.ID)
	})

	want := []string{"0-0:A", "0-1:B", "1-0:C"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("index %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}
