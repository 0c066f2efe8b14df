package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

const runsCollection = "pipeline_runs"

// RunRecord is the persisted summary of one pipeline execution.
type RunRecord struct {
	TargetDate string          `firestore:"targetDate"`
	StartedAt  time.Time       `firestore:"startedAt"`
	FinishedAt time.Time       `firestore:"finishedAt"`
	Manifest   models.Manifest `firestore:"manifest"`
}

// NewRunRecord summarizes run as finished at finishedAt.
func NewRunRecord(run *models.RunContext, finishedAt time.Time) RunRecord {
	return RunRecord{
		TargetDate: run.TargetDate.String(),
		StartedAt:  run.StartedAt,
		FinishedAt: finishedAt,
		Manifest:   run.Manifest,
	}
}

// RunLedger stores one document per target date, keyed by its stamp.
type RunLedger struct {
	client *firestore.Client
}

func NewRunLedger(ctx context.Context, projectID string) (*RunLedger, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &RunLedger{client: client}, nil
}

func (l *RunLedger) Close() error {
	return l.client.Close()
}

// Record writes the run, replacing any earlier run for the same date.
func (l *RunLedger) Record(ctx context.Context, run *models.RunContext) error {
	rec := NewRunRecord(run, time.Now().UTC())
	_, err := l.client.Collection(runsCollection).Doc(run.Manifest.Stamp).Set(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.Manifest.Stamp, err)
	}
	return nil
}

// Get returns the run recorded for stamp, or nil if there is none.
func (l *RunLedger) Get(ctx context.Context, stamp string) (*RunRecord, error) {
	doc, err := l.client.Collection(runsCollection).Doc(stamp).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run %s: %w", stamp, err)
	}
	if !doc.Exists() {
		return nil, nil
	}

	var rec RunRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}
	return &rec, nil
}

// Recent returns up to limit runs, most recently started first.
func (l *RunLedger) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	iter := l.client.Collection(runsCollection).
		OrderBy("startedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var out []RunRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate runs: %w", err)
		}
		var rec RunRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run %s: %w", doc.Ref.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
