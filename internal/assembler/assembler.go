// Package assembler merges extracted page content and annotator output into
// the canonical article record.
package assembler

import (
	"strconv"
	"strings"
	"time"

	"github.com/bucsfan/sentiment-pipeline/internal/ai"
	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

const articleKeyPrefix = "article_"

// Extraction is everything read from one article page before annotation.
type Extraction struct {
	Address  string
	Title    string
	Body     string
	PostTime time.Time
	Comments models.Responses
}

// ArticleKey returns the synthetic key for the n-th retained article.
func ArticleKey(n int) string {
	return articleKeyPrefix + strconv.Itoa(n)
}

// Assemble builds the record for an extraction. comments is nil when the
// article has no comments to analyze. The returned record has no Key; keys
// depend on discovery order and are assigned by the caller.
func Assemble(ex Extraction, article ai.ArticleAnalysis, comments *ai.CommentAnalysis) models.ArticleRecord {
	rec := models.ArticleRecord{
		Address:               ex.Address,
		Title:                 ex.Title,
		Post:                  ex.Body,
		PostTime:              ex.PostTime,
		WordCount:             models.WordCount(ex.Body),
		NumberOfComments:      len(ex.Comments),
		ArticleSentimentScore: article.SentimentScore,
		ArticleSubject:        strings.TrimSpace(article.Subject),
		ArticleSummary:        strings.TrimSpace(article.Summary),
		ResponseSummary:       models.NoCommentsSummary,
		Responses:             ex.Comments,
	}
	if rec.Responses == nil {
		rec.Responses = models.Responses{}
	}
	if comments != nil {
		score := strings.TrimSpace(comments.SentimentScore)
		rec.ResponseSentimentScore = &score
		rec.ResponseSummary = strings.TrimSpace(comments.Summary)
	}
	return rec
}
