package tasks

import (
	"context"

	"github.com/desertthunder/zhixue/internal/catalog"
	"github.com/desertthunder/zhixue/internal/progress"
)

// Exporter defines bulk operations over saved course progress.
type Exporter interface {
	BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error)
}

// ReportEngine implements Exporter on top of the catalog and the progress store.
type ReportEngine struct {
	catalog *catalog.Catalog
	store   *progress.Store
	calc    progress.Calculator
}

// NewReportEngine creates a new ReportEngine.
func NewReportEngine(c *catalog.Catalog, store *progress.Store, calc progress.Calculator) *ReportEngine {
	return &ReportEngine{catalog: c, store: store, calc: calc}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ReportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

var _ Exporter = (*ReportEngine)(nil)
