package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/zhixue/internal/catalog"
	"github.com/desertthunder/zhixue/internal/formatter"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
	tu "github.com/desertthunder/zhixue/internal/testing"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, saved ...string) *ReportEngine {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	store := progress.NewStore(progress.StoreOpts{
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Now:    func() time.Time { return fixedNow },
	})
	for _, id := range saved {
		p := models.NewCourseProgress(fixedNow)
		p.LessonProgress["0-0"] = 10
		if err := store.Save(context.Background(), id, p); err != nil {
			t.Fatalf("failed to seed %s: %v", id, err)
		}
	}
	return NewReportEngine(c, store, progress.Calculator{})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{CollectCourses, "collect_courses"},
		{ExportReport, "export_report"},
		{WriteManifest, "write_manifest"},
		{Phase(99), ""},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		saved       []string
		ids         []string
		format      string
		wantSuccess int
		wantFailed  int
		wantFiles   []string
	}{
		{
			name:        "saved courses as csv",
			saved:       []string{"course-001", "course-002"},
			format:      formatter.FormatCSV,
			wantSuccess: 2,
			wantFiles:   []string{"course-001_progress.csv", "course-002_progress.csv"},
		},
		{
			name:        "explicit ids as markdown",
			ids:         []string{"course-003"},
			format:      formatter.FormatMarkdown,
			wantSuccess: 1,
			wantFiles:   []string{"course-003_progress.md"},
		},
		{
			name:        "unknown course is recorded as a failure",
			ids:         []string{"course-001", "missing"},
			format:      formatter.FormatJSON,
			wantSuccess: 1,
			wantFailed:  1,
			wantFiles:   []string{"course-001_progress.json"},
		},
		{
			name:   "nothing saved",
			format: formatter.FormatText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.saved...)
			dir := filepath.Join(t.TempDir(), "out")
			prog := make(chan ProgressUpdate, 32)

			result, err := engine.BulkExport(ctx, prog, tt.ids, BulkExportOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: 2,
				Now:        func() time.Time { return fixedNow },
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.SuccessfulExports != tt.wantSuccess || result.FailedExports != tt.wantFailed {
				t.Errorf("expected %d/%d success/failed, got %d/%d",
					tt.wantSuccess, tt.wantFailed, result.SuccessfulExports, result.FailedExports)
			}
			if result.TotalCourses != tt.wantSuccess+tt.wantFailed {
				t.Errorf("expected total %d, got %d", tt.wantSuccess+tt.wantFailed, result.TotalCourses)
			}
			for i := 1; i < len(result.Results); i++ {
				if result.Results[i-1].CourseID > result.Results[i].CourseID {
					t.Error("expected results sorted by course ID")
				}
			}
			for _, f := range tt.wantFiles {
				tu.AssertFileExists(t, filepath.Join(dir, f))
			}

			var m formatter.Manifest
			if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &m); err != nil {
				t.Fatalf("invalid manifest: %v", err)
			}
			if len(m.Entries) != result.TotalCourses || !m.ExportedAt.Equal(fixedNow) {
				t.Errorf("unexpected manifest %+v", m)
			}

			close(prog)
			var last ProgressUpdate
			for u := range prog {
				last = u
			}
			if last.Phase != WriteManifest {
				t.Errorf("expected final update to be the manifest, got %v", last.Phase)
			}
		})
	}

	t.Run("failure carries the cause", func(t *testing.T) {
		engine := newTestEngine(t)
		result, err := engine.BulkExport(ctx, nil, []string{"missing"}, BulkExportOpts{
			Format:    formatter.FormatText,
			OutputDir: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if !errors.Is(result.Results[0].Error, shared.ErrCourseNotFound) {
			t.Errorf("expected ErrCourseNotFound, got %v", result.Results[0].Error)
		}
		content := tu.MustReadFile(t, result.ManifestPath)
		if !strings.Contains(content, `"success": false`) {
			t.Errorf("expected failed entry in manifest:\n%s", content)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		engine := newTestEngine(t)
		_, err := engine.BulkExport(ctx, nil, nil, BulkExportOpts{Format: "xml", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		c, _ := catalog.Default()
		store := progress.NewStore(progress.StoreOpts{
			Storage: &tu.FailingStorage{Err: errors.New("disk gone")},
			Logger:  shared.NewLogger(&bytes.Buffer{}),
		})
		engine := NewReportEngine(c, store, progress.Calculator{})

		if _, err := engine.BulkExport(ctx, nil, nil, BulkExportOpts{Format: "csv", OutputDir: t.TempDir()}); err == nil {
			t.Error("expected error when saved courses cannot be listed")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		engine := newTestEngine(t, "course-001")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		dir := t.TempDir()
		_, err := engine.BulkExport(cctx, nil, nil, BulkExportOpts{Format: "csv", OutputDir: dir})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(dir, "export_manifest.json")); !os.IsNotExist(statErr) {
			t.Error("expected no manifest for a cancelled export")
		}
	})
}
