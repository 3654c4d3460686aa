package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CollectCourses Phase = iota
	ExportReport
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case CollectCourses:
		return "collect_courses"
	case ExportReport:
		return "export_report"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func collectingCoursesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CollectCourses,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d courses...", total),
	}
}

func exportCompletedUpdate(step, total int, title, file string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportReport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s", step, total, title, file),
		Data:    file,
	}
}

func exportFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportReport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
		Data:    path,
	}
}
