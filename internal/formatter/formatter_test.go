package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
	tu "github.com/desertthunder/zhixue/internal/testing"
)

func testReport(t *testing.T) *Report {
	t.Helper()
	c := &models.Course{
		ID:         "course-001",
		Title:      "Go Basics",
		Instructor: "Lin",
		Chapters: []models.Chapter{
			{Title: "Intro", Lessons: []models.Lesson{{ID: "a", Title: "Setup", Duration: 60}, {ID: "b", Title: "Hello, World", Duration: 90}}},
			{Title: "Types", Lessons: []models.Lesson{{ID: "c", Title: "Structs", Duration: 125}}},
		},
	}
	p := models.NewCourseProgress(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	p.CurrentLesson = 1
	p.LessonProgress["0-0"] = 60
	p.LessonProgress["0-1"] = 12.5
	p.LessonProgress["9-9"] = 5

	return NewReport(c, p, progress.Calculator{})
}

func TestNewReport(t *testing.T) {
	r := testReport(t)

	if r.Progress != 67 || r.Completed != 2 || r.Total != 3 {
		t.Errorf("unexpected totals: progress=%d completed=%d total=%d", r.Progress, r.Completed, r.Total)
	}
	if len(r.Lessons) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(r.Lessons))
	}

	tests := []struct {
		idx      int
		complete bool
		current  bool
		chapter  string
	}{
		{0, true, false, "Intro"},
		{1, true, true, "Intro"},
		{2, false, false, "Types"},
	}
	for _, tt := range tests {
		row := r.Lessons[tt.idx]
		if row.Complete != tt.complete || row.Current != tt.current || row.ChapterTitle != tt.chapter {
			t.Errorf("row %d: unexpected %+v", tt.idx, row)
		}
	}

	t.Run("threshold", func(t *testing.T) {
		c := &models.Course{ID: "x", Title: "X", Chapters: []models.Chapter{{Lessons: []models.Lesson{{Duration: 100}}}}}
		p := models.NewCourseProgress(time.Now())
		p.LessonProgress["0-0"] = 40

		r := NewReport(c, p, progress.Calculator{Threshold: 0.5})
		if r.Lessons[0].Complete || r.Progress != 0 {
			t.Errorf("expected incomplete below threshold, got %+v", r)
		}
	})
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testReport(t))
	if err != nil {
		t.Fatalf("failed to export CSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}

	want := [][]string{
		{"Chapter", "Lesson", "Title", "Elapsed", "Duration", "Complete"},
		{"1", "1", "Setup", "60", "60", "true"},
		{"1", "2", "Hello, World", "12.5", "90", "true"},
		{"2", "1", "Structs", "0", "125", "false"},
	}
	for i := range want {
		for j := range want[i] {
			if records[i][j] != want[i][j] {
				t.Errorf("record %d col %d: expected %q, got %q", i, j, want[i][j], records[i][j])
			}
		}
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(testReport(t))
	if err != nil {
		t.Fatalf("failed to export Markdown: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"# Go Basics",
		"**Instructor**: Lin",
		"**Progress**: 67% (2/3 lessons)",
		"**Last studied**: 2026-10-19T09:00:00Z",
		"## 1. Intro",
		"## 2. Types",
		"- [x] Setup [1:00 / 1:00]",
		"- [x] Hello, World [0:12 / 1:30] ← current",
		"- [ ] Structs [0:00 / 2:05]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, out)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testReport(t))
	if err != nil {
		t.Fatalf("failed to export text: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"Course: Go Basics (course-001)",
		"67% (2/3)",
		"✓ 1.1 Setup",
		"> 1.2 Hello, World",
		"  2.1 Structs",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected text to contain %q\n%s", want, out)
		}
	}
}

func TestExport(t *testing.T) {
	r := testReport(t)

	t.Run("formats", func(t *testing.T) {
		for _, format := range []string{"text", "txt", "", "md", "markdown", "csv", "json", "JSON"} {
			if _, err := Export(r, format); err != nil {
				t.Errorf("format %q: unexpected error %v", format, err)
			}
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, err := Export(r, "xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("json", func(t *testing.T) {
		data, err := ExportToJSON(r)
		if err != nil {
			t.Fatalf("failed to export JSON: %v", err)
		}
		var got Report
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.CourseID != "course-001" || len(got.Lessons) != 3 {
			t.Errorf("unexpected report %+v", got)
		}
	})
}

func TestWriteExport(t *testing.T) {
	r := testReport(t)

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "report.csv")

		got, err := WriteExport(r, FormatCSV, path)
		if err != nil {
			t.Fatalf("failed to write export: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.HasPrefix(content, "Chapter,Lesson") {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("default path", func(t *testing.T) {
		wd, _ := os.Getwd()
		dir := t.TempDir()
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("failed to chdir: %v", err)
		}
		defer os.Chdir(wd)

		got, err := WriteExport(r, FormatMarkdown, "")
		if err != nil {
			t.Fatalf("failed to write export: %v", err)
		}
		if got != "course-001_progress.md" {
			t.Errorf("unexpected default path %s", got)
		}
		tu.AssertFileExists(t, filepath.Join(dir, got))
	})

	t.Run("bad format writes nothing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.out")
		if _, err := WriteExport(r, "xml", path); err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no file to be written")
		}
	})
}

func TestFormatSessions(t *testing.T) {
	if got := FormatSessions(nil); got != "No sessions recorded.\n" {
		t.Errorf("unexpected empty output %q", got)
	}

	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s := models.NewSession("course-001", 10, start)
	s.Sequence = 7
	s.Finish(40, 2, start.Add(90*time.Second))

	out := FormatSessions([]*models.Session{s})
	for _, want := range []string{"COURSE", "7", "course-001", "ended", "10→40", "(1:30)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output\n%s", want, out)
		}
	}
}

func TestWriteBulkExportManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export_manifest.json")
	m := Manifest{
		Format:            FormatCSV,
		TotalCourses:      2,
		SuccessfulExports: 1,
		FailedExports:     1,
		Entries: []ManifestEntry{
			{CourseID: "c1", Title: "One", File: "c1_progress.csv", Success: true},
			{CourseID: "c2", Error: "course not found"},
		},
	}

	if err := WriteBulkExportManifest(m, path); err != nil {
		t.Fatalf("WriteBulkExportManifest failed: %v", err)
	}

	content := tu.MustReadFile(t, path)
	for _, want := range []string{`"format": "csv"`, `"total_courses": 2`, `"successful_exports": 1`, `"c1_progress.csv"`, `"course not found"`} {
		if !strings.Contains(content, want) {
			t.Errorf("manifest missing %s:\n%s", want, content)
		}
	}

	if err := WriteBulkExportManifest(m, filepath.Join(t.TempDir(), "missing", "m.json")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
