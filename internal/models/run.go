package models

import (
	"time"

	"github.com/bucsfan/sentiment-pipeline/internal/rundate"
)

// RunContext is created once per pipeline execution and handed to every
// stage, so no stage has to recompute the target date on its own.
type RunContext struct {
	TargetDate rundate.Date
	StartedAt  time.Time
	Manifest   Manifest
}

// NewRunContext builds the context for a run starting at now.
func NewRunContext(now time.Time, lagDays int) *RunContext {
	target := rundate.Resolve(now, lagDays)
	return &RunContext{
		TargetDate: target,
		StartedAt:  now,
		Manifest:   Manifest{Stamp: target.Stamp()},
	}
}

// Manifest records what each stage produced.
type Manifest struct {
	Stamp        string   `firestore:"stamp"`
	ArticlesFile string   `firestore:"articlesFile"`
	CommentsFile string   `firestore:"commentsFile"`
	ArticlesKey  string   `firestore:"articlesKey,omitempty"`
	CommentsKey  string   `firestore:"commentsKey,omitempty"`
	ExportFiles  []string `firestore:"exportFiles,omitempty"`
	ArticleCount int      `firestore:"articleCount"`
	CommentCount int      `firestore:"commentCount"`
	Loaded       bool     `firestore:"loaded"`
}

// ArticlesName is the article CSV basename for the run.
func (r *RunContext) ArticlesName() string {
	return "data_" + r.Manifest.Stamp + ".csv"
}

// CommentsName is the comment CSV basename for the run.
func (r *RunContext) CommentsName() string {
	return "comments_" + r.Manifest.Stamp + ".csv"
}
