package progress

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/shared"
	tu "github.com/desertthunder/zhixue/internal/testing"
)

var fixedNow = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T, storage Storage) (*Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	store := NewStore(StoreOpts{
		Storage: storage,
		Logger:  shared.NewLogger(&buf),
		Now:     func() time.Time { return fixedNow },
	})
	return store, &buf
}

func assertDefault(t *testing.T, p models.CourseProgress) {
	t.Helper()
	if p.CurrentChapter != 0 || p.CurrentLesson != 0 || p.LastPosition != 0 || p.Progress != 0 {
		t.Errorf("expected zeroed progress, got %+v", p)
	}
	if p.LessonProgress == nil || len(p.LessonProgress) != 0 {
		t.Errorf("expected empty lesson progress, got %v", p.LessonProgress)
	}
	if !p.LastAccessTime.Equal(fixedNow) {
		t.Errorf("expected access time %v, got %v", fixedNow, p.LastAccessTime)
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Load unseen course returns default", func(t *testing.T) {
		store, logs := newTestStore(t, NewMemoryStorage())

		first := store.Load(ctx, "never-seen")
		second := store.Load(ctx, "never-seen")

		assertDefault(t, first)
		assertDefault(t, second)

		if logs.Len() != 0 {
			t.Errorf("absent progress should not log a warning, got %q", logs.String())
		}
	})

	t.Run("Save and Load round trip", func(t *testing.T) {
		store, _ := newTestStore(t, NewMemoryStorage())
		want := models.CourseProgress{
			CurrentChapter: 1,
			CurrentLesson:  2,
			LessonProgress: map[string]float64{"0-0": 61.5, "1-2": 12},
			LastPosition:   12,
			Progress:       40,
			LastAccessTime: time.Date(2026, 3, 4, 5, 6, 7, 123000000, time.UTC),
		}

		if err := store.Save(ctx, "course-001", want); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got := store.Load(ctx, "course-001")

		if got.CurrentChapter != want.CurrentChapter || got.CurrentLesson != want.CurrentLesson {
			t.Errorf("expected position %v, got %v", want.Position(), got.Position())
		}
		if got.LastPosition != want.LastPosition || got.Progress != want.Progress {
			t.Errorf("expected lastPosition/progress %v/%d, got %v/%d", want.LastPosition, want.Progress, got.LastPosition, got.Progress)
		}
		if len(got.LessonProgress) != len(want.LessonProgress) {
			t.Fatalf("expected %d lesson entries, got %d", len(want.LessonProgress), len(got.LessonProgress))
		}
		for k, v := range want.LessonProgress {
			if got.LessonProgress[k] != v {
				t.Errorf("lesson %s: expected %v, got %v", k, v, got.LessonProgress[k])
			}
		}
		if !got.LastAccessTime.Equal(want.LastAccessTime) {
			t.Errorf("expected access time %v, got %v", want.LastAccessTime, got.LastAccessTime)
		}
	})

	t.Run("Save overwrites", func(t *testing.T) {
		store, _ := newTestStore(t, NewMemoryStorage())

		first := models.NewCourseProgress(fixedNow)
		first.LessonProgress["0-0"] = 5
		if err := store.Save(ctx, "c", first); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		second := models.NewCourseProgress(fixedNow)
		second.CurrentLesson = 1
		if err := store.Save(ctx, "c", second); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got := store.Load(ctx, "c")
		if got.CurrentLesson != 1 || len(got.LessonProgress) != 0 {
			t.Errorf("expected wholesale overwrite, got %+v", got)
		}
	})

	t.Run("Save nil lesson map reloads", func(t *testing.T) {
		store, logs := newTestStore(t, NewMemoryStorage())

		if err := store.Save(ctx, "c", models.CourseProgress{Progress: 10}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got := store.Load(ctx, "c")
		if got.Progress != 10 {
			t.Errorf("expected saved progress to load, got %+v (logs %q)", got, logs.String())
		}
	})

	t.Run("Save rejects empty course id", func(t *testing.T) {
		store, _ := newTestStore(t, NewMemoryStorage())
		err := store.Save(ctx, " ", models.NewCourseProgress(fixedNow))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Save storage failure", func(t *testing.T) {
		store, _ := newTestStore(t, &tu.FailingStorage{Err: errors.New("disk full")})
		err := store.Save(ctx, "c", models.NewCourseProgress(fixedNow))
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Load storage failure falls back", func(t *testing.T) {
		store, logs := newTestStore(t, &tu.FailingStorage{Err: errors.New("locked")})
		assertDefault(t, store.Load(ctx, "c"))
		if logs.Len() == 0 {
			t.Error("expected a warning for unreadable storage")
		}
	})

	t.Run("Key layout", func(t *testing.T) {
		storage := NewMemoryStorage()
		store, _ := newTestStore(t, storage)

		if err := store.Save(ctx, "course-001", models.NewCourseProgress(fixedNow)); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		if _, ok, _ := storage.Get(ctx, "course-progress-course-001"); !ok {
			t.Error("expected entry under course-progress-course-001")
		}
	})

	t.Run("Reset and Courses", func(t *testing.T) {
		storage := NewMemoryStorage()
		store, _ := newTestStore(t, storage)
		_ = storage.Set(ctx, "unrelated", "x")

		for _, id := range []string{"b", "a"} {
			if err := store.Save(ctx, id, models.NewCourseProgress(fixedNow)); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
		}

		ids, err := store.Courses(ctx)
		if err != nil {
			t.Fatalf("failed to list courses: %v", err)
		}
		if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
			t.Errorf("expected [a b], got %v", ids)
		}

		if err := store.Reset(ctx, "a"); err != nil {
			t.Fatalf("failed to reset: %v", err)
		}

		ids, _ = store.Courses(ctx)
		if len(ids) != 1 || ids[0] != "b" {
			t.Errorf("expected [b] after reset, got %v", ids)
		}
	})
}

func TestDecode(t *testing.T) {
	tc := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid",
			raw:  `{"currentChapter":1,"currentLesson":0,"lessonProgress":{"0-0":3},"lastPosition":3,"progress":50,"lastAccessTime":"2024-01-01T00:00:00.000Z"}`,
		},
		{
			name: "missing access time is accepted",
			raw:  `{"currentChapter":0,"currentLesson":0,"lessonProgress":{},"lastPosition":0,"progress":0}`,
		},
		{
			name:    "missing progress",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":{},"lastPosition":0}`,
			wantErr: true,
		},
		{
			name:    "progress as string",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":{},"lastPosition":0,"progress":"10"}`,
			wantErr: true,
		},
		{
			name:    "progress over 100",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":{},"lastPosition":0,"progress":101}`,
			wantErr: true,
		},
		{
			name:    "fractional chapter",
			raw:     `{"currentChapter":0.5,"currentLesson":0,"lessonProgress":{},"lastPosition":0,"progress":0}`,
			wantErr: true,
		},
		{
			name:    "negative lesson",
			raw:     `{"currentChapter":0,"currentLesson":-1,"lessonProgress":{},"lastPosition":0,"progress":0}`,
			wantErr: true,
		},
		{
			name:    "null lesson progress",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":null,"lastPosition":0,"progress":0}`,
			wantErr: true,
		},
		{
			name:    "lesson progress array",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":[1],"lastPosition":0,"progress":0}`,
			wantErr: true,
		},
		{
			name:    "lesson progress string value",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":{"0-0":"1"},"lastPosition":0,"progress":0}`,
			wantErr: true,
		},
		{
			name:    "null last position",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":{},"lastPosition":null,"progress":0}`,
			wantErr: true,
		},
		{
			name:    "bad access time",
			raw:     `{"currentChapter":0,"currentLesson":0,"lessonProgress":{},"lastPosition":0,"progress":0,"lastAccessTime":"yesterday"}`,
			wantErr: true,
		},
		{name: "not json", raw: `{{`, wantErr: true},
		{name: "json null", raw: `null`, wantErr: true},
		{name: "json array", raw: `[]`, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, shared.ErrMalformedState) {
				t.Errorf("expected ErrMalformedState, got %v", err)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	store, logs := newTestStore(t, storage)

	_ = storage.Set(ctx, Key("broken"), `{"currentChapter":2,"currentLesson":1,"lessonProgress":{"0-0":9},"lastPosition":9}`)

	assertDefault(t, store.Load(ctx, "broken"))

	if logs.Len() == 0 {
		t.Error("expected a warning for malformed progress")
	}
}
