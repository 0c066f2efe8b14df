package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/bucsfan/sentiment-pipeline/internal/ai"
	"github.com/bucsfan/sentiment-pipeline/internal/config"
	"github.com/bucsfan/sentiment-pipeline/internal/notifier"
	"github.com/bucsfan/sentiment-pipeline/internal/processor"
	"github.com/bucsfan/sentiment-pipeline/internal/scraper"
	"github.com/bucsfan/sentiment-pipeline/internal/storage"
	"github.com/bucsfan/sentiment-pipeline/internal/validator"
	"github.com/bucsfan/sentiment-pipeline/internal/warehouse"
)

const runTimeout = 30 * time.Minute

type Server struct {
	processor processor.Processor
	ledger    *storage.RunLedger
}

func main() {
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)
	if err := validator.New().ValidateStruct(cfg); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("Starting JoeBucsFan sentiment pipeline...", "once", *once)

	ctx := context.Background()

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing annotator", "error", err)
		os.Exit(1)
	}

	fetcher := scraper.NewHTTPFetcher(cfg.FetchTimeout, cfg.FetchRate, cfg.AllowedDomains)
	s := scraper.New(fetcher, ai.NewAnnotator(completer), scraper.LoadConfig(), cfg.PublishOffset, cfg.Concurrency)

	stages, ledger, db, err := buildStages(ctx, cfg)
	if err != nil {
		slog.Error("Critical error initializing pipeline stages", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}
	if ledger != nil {
		defer ledger.Close()
	}

	p := processor.New(s, stages, cfg)

	if *once {
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		_, err := p.Run(runCtx)
		cancel()
		if err != nil {
			slog.Error("Pipeline run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	serve(cfg, &Server{processor: p, ledger: ledger})
}

func serve(cfg *config.Config, srv *Server) {
	loc, err := time.LoadLocation(cfg.ScheduleTZ)
	if err != nil {
		slog.Error("Invalid SCHEDULE_TZ", "tz", cfg.ScheduleTZ, "error", err)
		os.Exit(1)
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.Schedule, srv.runPipeline); err != nil {
		slog.Error("Invalid SCHEDULE", "schedule", cfg.Schedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	slog.Info("Scheduled pipeline", "schedule", cfg.Schedule, "tz", cfg.ScheduleTZ)

	mux := http.NewServeMux()
	mux.HandleFunc("/run", srv.RunHandler)
	mux.HandleFunc("/runs", srv.RunsHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		select {
		case <-c.Stop().Done():
		case <-shutdownCtx.Done():
			slog.Warn("Scheduled run still active at shutdown")
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

func (s *Server) runPipeline() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in pipeline run", "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := s.processor.Run(ctx); err != nil {
		if errors.Is(err, processor.ErrRunInProgress) {
			slog.Info("Skipping trigger, a run is already in progress")
			return
		}
		slog.Error("Pipeline run failed", "error", err)
	}
}

// RunHandler starts a run in the background so the response is not held
// open by scraping and warehouse work.
func (s *Server) RunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	go s.runPipeline()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "Pipeline run started.")
}

// RunsHandler lists recently recorded runs.
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, "run ledger not configured", http.StatusNotFound)
		return
	}
	runs, err := s.ledger.Recent(r.Context(), 10)
	if err != nil {
		slog.Error("Failed to list runs", "error", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		slog.Warn("Failed to encode runs", "error", err)
	}
}

func setupLogger(level string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l})))
}

func newCompleter(ctx context.Context, cfg *config.Config) (ai.Completer, error) {
	switch cfg.AnnotatorProvider {
	case config.ProviderCohere:
		return ai.NewCohereCompleter(cfg.CohereAPIKey, cfg.CohereModel), nil
	default:
		return ai.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	}
}

// buildStages wires every stage whose settings are present. Unconfigured
// stages stay nil and are skipped by the pipeline.
func buildStages(ctx context.Context, cfg *config.Config) (processor.Stages, *storage.RunLedger, *sql.DB, error) {
	var stages processor.Stages

	if cfg.S3Bucket != "" {
		u, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3KeyPrefix)
		if err != nil {
			return stages, nil, nil, err
		}
		stages.Uploader = u
	}

	var db *sql.DB
	if cfg.Snowflake.Enabled() {
		var err error
		db, err = warehouse.Open(cfg.Snowflake)
		if err != nil {
			return stages, nil, nil, err
		}
		stages.Loader = warehouse.NewLoader(db, cfg.Snowflake)
		stages.Exporter = warehouse.NewExporter(db, cfg.ExportDir,
			warehouse.QualifiedTable(cfg.Snowflake, warehouse.ExtractTable),
			warehouse.QualifiedTable(cfg.Snowflake, warehouse.CommentsTable))
	}

	if cfg.DiscordWebhookURL != "" {
		stages.Notifier = notifier.New(cfg.DiscordWebhookURL)
	}

	var ledger *storage.RunLedger
	if cfg.ProjectID != "" {
		var err error
		ledger, err = storage.NewRunLedger(ctx, cfg.ProjectID)
		if err != nil {
			return stages, nil, db, err
		}
		stages.Recorder = ledger
	}

	return stages, ledger, db, nil
}
