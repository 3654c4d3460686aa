// package formatter renders course progress reports as CSV, Markdown, JSON or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/zhixue/internal/course"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
)

// Supported export formats.
const (
	FormatText     = "text"
	FormatMarkdown = "md"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// LessonRow is one lesson of a [Report].
type LessonRow struct {
	Chapter      int     `json:"chapter"`
	Lesson       int     `json:"lesson"`
	ChapterTitle string  `json:"chapterTitle"`
	Title        string  `json:"title"`
	Elapsed      float64 `json:"elapsed"`
	Duration     int     `json:"duration"`
	Complete     bool    `json:"complete"`
	Current      bool    `json:"current"`
}

// Report is a flattened view of a learner's progress through one course.
type Report struct {
	CourseID       string      `json:"courseId"`
	Title          string      `json:"title"`
	Instructor     string      `json:"instructor,omitempty"`
	Progress       int         `json:"progress"`
	Completed      int         `json:"completed"`
	Total          int         `json:"total"`
	LastAccessTime time.Time   `json:"lastAccessTime"`
	Lessons        []LessonRow `json:"lessons"`
}

// NewReport builds a Report for c from p, judging completion with calc.
func NewReport(c *models.Course, p models.CourseProgress, calc progress.Calculator) *Report {
	r := &Report{
		CourseID:       c.ID,
		Title:          c.Title,
		Instructor:     c.Instructor,
		Progress:       calc.Overall(c, p.LessonProgress),
		Completed:      calc.Completed(c, p.LessonProgress),
		Total:          c.TotalLessons(),
		LastAccessTime: p.LastAccessTime,
		Lessons:        make([]LessonRow, 0, c.TotalLessons()),
	}

	current := p.Position()
	course.Lessons(c, func(pos models.Position, l *models.Lesson) {
		elapsed := p.Elapsed(pos)
		r.Lessons = append(r.Lessons, LessonRow{
			Chapter:      pos.Chapter,
			Lesson:       pos.Lesson,
			ChapterTitle: c.Chapters[pos.Chapter].Title,
			Title:        l.Title,
			Elapsed:      elapsed,
			Duration:     l.Duration,
			Complete:     calc.IsComplete(l, elapsed),
			Current:      pos == current,
		})
	})
	return r
}

// Supported reports whether [Export] understands format.
func Supported(format string) bool {
	switch strings.ToLower(format) {
	case FormatText, "txt", "", FormatMarkdown, "markdown", FormatCSV, FormatJSON:
		return true
	}
	return false
}

// Export renders r in format.
func Export(r *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatText, "txt", "":
		return ExportToText(r)
	case FormatMarkdown, "markdown":
		return ExportToMarkdown(r)
	case FormatCSV:
		return ExportToCSV(r)
	case FormatJSON:
		return ExportToJSON(r)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToCSV writes one row per lesson with columns: Chapter, Lesson, Title, Elapsed, Duration, Complete
func ExportToCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Chapter", "Lesson", "Title", "Elapsed", "Duration", "Complete"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range r.Lessons {
		record := []string{
			strconv.Itoa(row.Chapter + 1),
			strconv.Itoa(row.Lesson + 1),
			row.Title,
			strconv.FormatFloat(row.Elapsed, 'f', -1, 64),
			strconv.Itoa(row.Duration),
			strconv.FormatBool(row.Complete),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading per chapter and a checklist of lessons
func ExportToMarkdown(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.Title)
	if r.Instructor != "" {
		fmt.Fprintf(&buf, "**Instructor**: %s\n", r.Instructor)
	}
	fmt.Fprintf(&buf, "**Progress**: %d%% (%d/%d lessons)\n", r.Progress, r.Completed, r.Total)
	if !r.LastAccessTime.IsZero() {
		fmt.Fprintf(&buf, "**Last studied**: %s\n", r.LastAccessTime.Format(time.RFC3339))
	}

	chapter := -1
	for _, row := range r.Lessons {
		if row.Chapter != chapter {
			chapter = row.Chapter
			fmt.Fprintf(&buf, "\n## %d. %s\n\n", row.Chapter+1, row.ChapterTitle)
		}
		check := " "
		if row.Complete {
			check = "x"
		}
		marker := ""
		if row.Current {
			marker = " ← current"
		}
		fmt.Fprintf(&buf, "- [%s] %s [%s / %s]%s\n",
			check, row.Title, shared.FormatDuration(int(row.Elapsed)), shared.FormatDuration(row.Duration), marker)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a compact plain text summary
func ExportToText(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Course: %s (%s)\n", r.Title, r.CourseID)
	fmt.Fprintf(&buf, "Progress: %s %d%% (%d/%d)\n\n", shared.ProgressBar(r.Progress, 20), r.Progress, r.Completed, r.Total)

	for _, row := range r.Lessons {
		status := " "
		switch {
		case row.Current:
			status = ">"
		case row.Complete:
			status = "✓"
		}
		fmt.Fprintf(&buf, "%s %d.%d %s  %s/%s\n",
			status, row.Chapter+1, row.Lesson+1, row.Title,
			shared.FormatDuration(int(row.Elapsed)), shared.FormatDuration(row.Duration))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the report as indented JSON
func ExportToJSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders r in format and writes it to path, creating parent directories.
//
// An empty path defaults to {courseId}_progress.{ext} in the working directory.
func WriteExport(r *Report, format, path string) (string, error) {
	data, err := Export(r, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fmt.Sprintf("%s_progress.%s", r.CourseID, Extension(format))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "markdown":
		return "md"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "txt"
	}
}

// FormatSessions renders session history as an aligned plain text table.
func FormatSessions(sessions []*models.Session) string {
	if len(sessions) == 0 {
		return "No sessions recorded.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-5s %-12s %-10s %-9s %-8s %s\n", "#", "COURSE", "STATUS", "PROGRESS", "LESSONS", "STARTED")
	for _, s := range sessions {
		fmt.Fprintf(&b, "%-5d %-12s %-10s %3d→%-4d %-8d %s",
			s.Sequence, s.CourseID, s.Status, s.StartProgress, s.EndProgress, s.LessonsCompleted,
			s.StartedAt.Local().Format("2006-01-02 15:04"))
		if d := s.Duration(); d > 0 {
			fmt.Fprintf(&b, " (%s)", shared.FormatDuration(int(d.Seconds())))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ManifestEntry records the outcome of exporting one course.
type ManifestEntry struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title,omitempty"`
	File     string `json:"file,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	ExportedAt        time.Time       `json:"exported_at"`
	Format            string          `json:"format"`
	TotalCourses      int             `json:"total_courses"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Entries           []ManifestEntry `json:"entries"`
}

// WriteBulkExportManifest writes m as indented JSON to path.
func WriteBulkExportManifest(m Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
