package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("failed to load built-in catalog: %v", err)
	}

	if c.Len() == 0 {
		t.Fatal("expected built-in courses")
	}

	course, err := c.Get("course-001")
	if err != nil {
		t.Fatalf("expected course-001: %v", err)
	}

	if len(course.Chapters) != 2 || course.TotalLessons() != 3 {
		t.Errorf("expected course-001 to have 2 chapters and 3 lessons, got %d and %d", len(course.Chapters), course.TotalLessons())
	}

	list := c.List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("catalog not sorted: %s before %s", list[i-1].ID, list[i].ID)
		}
	}
}

func TestGet(t *testing.T) {
	c, err := New([]models.Course{{ID: "x", Title: "X"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.Get("missing"); !errors.Is(err, shared.ErrCourseNotFound) {
		t.Errorf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	tc := []struct {
		name    string
		courses []models.Course
	}{
		{name: "missing id", courses: []models.Course{{Title: "A"}}},
		{name: "missing title", courses: []models.Course{{ID: "a"}}},
		{name: "duplicate id", courses: []models.Course{{ID: "a", Title: "A"}, {ID: "a", Title: "B"}}},
		{
			name: "negative duration",
			courses: []models.Course{{ID: "a", Title: "A", Chapters: []models.Chapter{
				{Lessons: []models.Lesson{{ID: "l", VideoURL: "l.mp4", Duration: -1}}},
			}}},
		},
		{
			name: "zero duration",
			courses: []models.Course{{ID: "a", Title: "A", Chapters: []models.Chapter{
				{Lessons: []models.Lesson{{ID: "l", VideoURL: "l.mp4"}}},
			}}},
		},
		{
			name: "missing video url",
			courses: []models.Course{{ID: "a", Title: "A", Chapters: []models.Chapter{
				{Lessons: []models.Lesson{{ID: "l", VideoURL: "l.mp4", Duration: 600}, {ID: "m", Duration: 600}}},
			}}},
		},
		{name: "id with path separator", courses: []models.Course{{ID: "a/b", Title: "A"}}},
		{name: "id with parent reference", courses: []models.Course{{ID: "a..b", Title: "A"}}},
		{name: "dot dot id", courses: []models.Course{{ID: "..", Title: "A"}}},
		{name: "id with backslash", courses: []models.Course{{ID: `a\b`, Title: "A"}}},
		{name: "id with space", courses: []models.Course{{ID: "a b", Title: "A"}}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.courses); !errors.Is(err, shared.ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses built-in", func(t *testing.T) {
		c, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Len() == 0 {
			t.Error("expected built-in courses")
		}
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "courses.json")
		body := `[{"id":"go-101","title":"Go","chapters":[{"title":"c","lessons":[{"id":"l","title":"t","videoUrl":"v.mp4","duration":10}]}]}]`
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("failed to write catalog: %v", err)
		}

		c, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load catalog: %v", err)
		}

		course, err := c.Get("go-101")
		if err != nil {
			t.Fatalf("expected go-101: %v", err)
		}
		if course.Chapters[0].Lessons[0].VideoURL != "v.mp4" {
			t.Errorf("expected video url v.mp4, got %s", course.Chapters[0].Lessons[0].VideoURL)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "courses.json")
		if err := os.WriteFile(path, []byte(`{"id":`), 0644); err != nil {
			t.Fatalf("failed to write catalog: %v", err)
		}

		if _, err := Load(path); !errors.Is(err, shared.ErrInvalidCatalog) {
			t.Errorf("expected ErrInvalidCatalog, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
