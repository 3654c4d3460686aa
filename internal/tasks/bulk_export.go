package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/zhixue/internal/formatter"
	"github.com/desertthunder/zhixue/internal/shared"
)

// BulkExportOpts contains configuration for bulk progress exports.
type BulkExportOpts struct {
	Format     string           // Export format: text, md, csv, json
	OutputDir  string           // Base output directory (default: progress_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4)
	Now        func() time.Time // Manifest timestamp source
}

// CourseExportResult is the outcome of exporting one course.
type CourseExportResult struct {
	CourseID string
	Title    string
	File     string
	Success  bool
	Error    error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalCourses      int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []CourseExportResult
}

// BulkExport writes one progress report per course into opts.OutputDir using a worker pool,
// then a manifest summarizing the run. An empty ids exports every course with saved progress.
//
// A course that fails to export is recorded in the result and does not stop the others.
func (e *ReportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if !formatter.Supported(opts.Format) {
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, opts.Format)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("progress_export_%d", opts.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	if len(ids) == 0 {
		saved, err := e.store.Courses(ctx)
		if err != nil {
			return nil, err
		}
		ids = saved
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalCourses:    len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]CourseExportResult, 0, len(ids)),
	}

	jobs := make(chan string, len(ids))
	results := make(chan CourseExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	e.sendProgress(prog, collectingCoursesUpdate(len(ids)))
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Title, res.File))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.CourseID, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].CourseID < result.Results[j].CourseID
	})

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(manifest(result, opts), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that exports courses from the jobs channel.
func (e *ReportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan string,
	results chan<- CourseExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for id := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportCourse(ctx, id, opts)
	}
}

// exportCourse writes the report for a single course.
func (e *ReportEngine) exportCourse(ctx context.Context, id string, opts BulkExportOpts) CourseExportResult {
	result := CourseExportResult{CourseID: id}

	c, err := e.catalog.Get(id)
	if err != nil {
		result.Error = err
		return result
	}
	result.Title = c.Title

	report := formatter.NewReport(c, e.store.Load(ctx, id), e.calc)
	path := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_progress.%s", id, formatter.Extension(opts.Format)))

	written, err := formatter.WriteExport(report, opts.Format, path)
	if err != nil {
		result.Error = err
		return result
	}
	result.File = written
	result.Success = true
	return result
}

func manifest(r *BulkExportResult, opts BulkExportOpts) formatter.Manifest {
	m := formatter.Manifest{
		ExportedAt:        opts.Now().UTC(),
		Format:            opts.Format,
		TotalCourses:      r.TotalCourses,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Entries:           make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			CourseID: res.CourseID,
			Title:    res.Title,
			Success:  res.Success,
		}
		if res.File != "" {
			entry.File = filepath.Base(res.File)
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Entries = append(m.Entries, entry)
	}
	return m
}
