package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bucsfan/sentiment-pipeline/internal/config"
	"github.com/bucsfan/sentiment-pipeline/internal/csvout"
	"github.com/bucsfan/sentiment-pipeline/internal/models"
	"github.com/bucsfan/sentiment-pipeline/internal/scraper"
	"github.com/bucsfan/sentiment-pipeline/internal/validator"
)

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("pipeline run already in progress")

type Processor interface {
	Run(ctx context.Context) (*models.RunContext, error)
}

type Pipeline struct {
	extractor Extractor
	stages    Stages
	config    *config.Config
	validator *validator.Validator
	now       func() time.Time
	mu        sync.Mutex
}

func New(e Extractor, stages Stages, cfg *config.Config) *Pipeline {
	return &Pipeline{
		extractor: e,
		stages:    stages,
		config:    cfg,
		validator: validator.New(),
		now:       time.Now,
	}
}

// Run executes one full pass for the configured lag: extract, serialize,
// then each configured stage in order. Extraction happens before anything
// is written, so a failed extraction leaves no files behind.
func (p *Pipeline) Run(ctx context.Context) (*models.RunContext, error) {
	if !p.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer p.mu.Unlock()

	run := models.NewRunContext(p.now(), p.config.LagDays)
	slog.Info("Starting pipeline run", "target_date", run.TargetDate.String(), "stamp", run.Manifest.Stamp)

	dataset, err := p.extractor.Extract(ctx, scraper.Request{
		BaseURL:    p.config.BaseURL,
		Pages:      p.config.PageNumbers,
		TargetDate: run.TargetDate,
	})
	if err != nil {
		return run, fmt.Errorf("failed to extract articles: %w", err)
	}
	p.checkRecords(dataset)

	if err := p.serialize(run, dataset); err != nil {
		return run, err
	}

	if p.stages.Uploader != nil {
		if err := p.stages.Uploader.Upload(ctx, run); err != nil {
			return run, fmt.Errorf("failed to upload files: %w", err)
		}
	}
	if p.stages.Loader != nil {
		if err := p.stages.Loader.Load(ctx, run); err != nil {
			return run, fmt.Errorf("failed to load warehouse: %w", err)
		}
	}
	if p.stages.Exporter != nil {
		if err := p.stages.Exporter.Export(ctx, run); err != nil {
			return run, fmt.Errorf("failed to export warehouse tables: %w", err)
		}
	}

	if p.stages.Notifier != nil {
		if err := p.stages.Notifier.NotifyRun(ctx, run); err != nil {
			slog.Warn("Discord notification failed", "stamp", run.Manifest.Stamp, "error", err)
		}
	}
	if p.stages.Recorder != nil {
		if err := p.stages.Recorder.Record(ctx, run); err != nil {
			slog.Warn("Failed to record run", "stamp", run.Manifest.Stamp, "error", err)
		}
	}

	slog.Info("Finished pipeline run",
		"target_date", run.TargetDate.String(),
		"articles", run.Manifest.ArticleCount,
		"comments", run.Manifest.CommentCount,
		"loaded", run.Manifest.Loaded,
		"elapsed", time.Since(run.StartedAt).Round(time.Millisecond))
	return run, nil
}

func (p *Pipeline) serialize(run *models.RunContext, dataset models.Dataset) error {
	articles := filepath.Join(p.config.OutputDir, run.ArticlesName())
	if err := csvout.WriteFile(articles, dataset, csvout.KindArticle); err != nil {
		return fmt.Errorf("failed to write articles: %w", err)
	}
	comments := filepath.Join(p.config.OutputDir, run.CommentsName())
	if err := csvout.WriteFile(comments, dataset, csvout.KindComment); err != nil {
		return fmt.Errorf("failed to write comments: %w", err)
	}

	run.Manifest.ArticlesFile = articles
	run.Manifest.CommentsFile = comments
	run.Manifest.ArticleCount = len(dataset)
	run.Manifest.CommentCount = dataset.CommentCount()
	slog.Info("Serialized dataset", "articles_file", articles, "comments_file", comments)
	return nil
}

// checkRecords logs records that fail validation. They are still written.
func (p *Pipeline) checkRecords(dataset models.Dataset) {
	for _, rec := range dataset {
		if err := p.validator.ValidateStruct(rec); err != nil {
			slog.Warn("Article record failed validation", "key", rec.Key, "url", rec.Address, "error", err)
		}
	}
}
