// Package ai sends article and comment text to a language-model service and
// parses its sentiment replies.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

// MaxInputChars bounds the text forwarded to the model per request.
const MaxInputChars = 16000

const systemPrompt = "You are a helpful assistant."

// Completer is a one-shot text completion backend.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ArticleAnalysis is the annotator's view of one article.
// Fields are returned untrimmed.
type ArticleAnalysis struct {
	SentimentScore string
	Subject        string
	Summary        string
}

// CommentAnalysis is the annotator's view of an article's comments.
// Fields are returned untrimmed.
type CommentAnalysis struct {
	SentimentScore string
	Summary        string
}

// Annotator scores article and comment sentiment.
type Annotator struct {
	completer Completer
}

func NewAnnotator(c Completer) *Annotator {
	return &Annotator{completer: c}
}

// AnalyzeArticle asks for "score, subject, summary" about an article.
func (a *Annotator) AnalyzeArticle(ctx context.Context, body, title string) (ArticleAnalysis, error) {
	prompt := fmt.Sprintf("Provide a sentiment score with 0 being maximally pessimistic and 10 being maximally optimistic "+
		"for an article titled %s with the following content: %s. Only provide the numeric score with no commentary. "+
		"Give the name of the subject of the article. Give a summary of the article in 10 words or less. "+
		"Provide the response in the form: 'sentiment score, subject of the article, summary of the article'.",
		title, truncate(body, MaxInputChars))

	reply, err := a.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return ArticleAnalysis{}, fmt.Errorf("article analysis failed: %w", err)
	}
	return ParseArticleReply(reply)
}

// AnalyzeComments asks for "score; summary" about a batch of comments.
func (a *Annotator) AnalyzeComments(ctx context.Context, combined string) (CommentAnalysis, error) {
	prompt := fmt.Sprintf("Provide a sentiment score with 0 being maximally pessimistic and 10 being maximally optimistic "+
		"for the following comments in total (i.e., don't provide a score for each comment): %s. "+
		"Only provide the numeric score with no commentary. Also, provide a summary of the responses in 15 words or less. "+
		"Structure the response in the following way with zero exceptions: 'sentiment score; summary' (e.g., 7; The team is good).",
		truncate(combined, MaxInputChars))

	reply, err := a.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return CommentAnalysis{}, fmt.Errorf("comment analysis failed: %w", err)
	}
	return ParseCommentReply(reply)
}

// ParseArticleReply splits a reply into score, subject and summary. Commas
// past the second stay inside the summary.
func ParseArticleReply(reply string) (ArticleAnalysis, error) {
	fields := strings.SplitN(reply, ",", 3)
	if len(fields) < 3 {
		return ArticleAnalysis{}, fmt.Errorf("%w: article reply has %d comma-separated fields, want 3: %q",
			models.ErrMalformedResponse, len(fields), reply)
	}
	return ArticleAnalysis{SentimentScore: fields[0], Subject: fields[1], Summary: fields[2]}, nil
}

// ParseCommentReply splits a reply into score and summary on the first ';'.
func ParseCommentReply(reply string) (CommentAnalysis, error) {
	fields := strings.SplitN(reply, ";", 2)
	if len(fields) < 2 {
		return CommentAnalysis{}, fmt.Errorf("%w: comment reply has no ';' separator: %q",
			models.ErrMalformedResponse, reply)
	}
	return CommentAnalysis{SentimentScore: fields[0], Summary: fields[1]}, nil
}

func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
