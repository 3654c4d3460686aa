// Package tasks runs long operations over saved course progress with real-time progress reporting.
//
// # Bulk Export
//
// [ReportEngine.BulkExport] renders a progress report for many courses at once:
//   - Collects course IDs (explicit, or every course with saved progress)
//   - Fans the IDs out to a bounded worker pool
//   - Writes one {courseId}_progress.{ext} file per course
//   - Writes export_manifest.json describing successes and failures
//
// # Progress Reporting
//
// Operations report through a caller-supplied channel of [ProgressUpdate].
// Sends use select with default, so a slow or absent reader never blocks the export.
package tasks
