package processor

import (
	"context"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
	"github.com/bucsfan/sentiment-pipeline/internal/scraper"
)

// Extractor produces the dataset for one target date.
type Extractor interface {
	Extract(ctx context.Context, req scraper.Request) (models.Dataset, error)
}

// Uploader copies the serialized files to object storage.
type Uploader interface {
	Upload(ctx context.Context, run *models.RunContext) error
}

// Loader copies the uploaded files into warehouse tables.
type Loader interface {
	Load(ctx context.Context, run *models.RunContext) error
}

// Exporter writes the warehouse tables out as local files.
type Exporter interface {
	Export(ctx context.Context, run *models.RunContext) error
}

// RunNotifier announces a finished run.
type RunNotifier interface {
	NotifyRun(ctx context.Context, run *models.RunContext) error
}

// RunRecorder persists the run manifest.
type RunRecorder interface {
	Record(ctx context.Context, run *models.RunContext) error
}

// Stages holds the optional stages that follow serialization. A nil stage
// is skipped.
type Stages struct {
	Uploader Uploader
	Loader   Loader
	Exporter Exporter
	Notifier RunNotifier
	Recorder RunRecorder
}
