package models

import (
	"strings"
	"time"
)

// NoCommentsSummary is stored as the response summary of an article that
// attracted no comments.
const NoCommentsSummary = "No comments available."

// ArticleRecord is one retained blog article together with its annotations
// and the comments found on its page.
type ArticleRecord struct {
	Key                    string    `validate:"required"` // article_<N>, not serialized
	Address                string    `validate:"required,url"`
	Title                  string
	Post                   string
	PostTime               time.Time `validate:"required"`
	WordCount              int       `validate:"gte=0"`
	NumberOfComments       int       `validate:"gte=0"`
	ArticleSentimentScore  string
	ArticleSubject         string
	ArticleSummary         string
	ResponseSentimentScore *string // nil when there are no comments
	ResponseSummary        string
	Responses              Responses
}

// Dataset holds the articles of one run in discovery order.
type Dataset []ArticleRecord

// Get returns the article stored under key.
func (d Dataset) Get(key string) (ArticleRecord, bool) {
	for _, a := range d {
		if a.Key == key {
			return a, true
		}
	}
	return ArticleRecord{}, false
}

// CommentCount is the total number of comments across all articles.
func (d Dataset) CommentCount() int {
	n := 0
	for _, a := range d {
		n += len(a.Responses)
	}
	return n
}

// CommentRecord is the flattened, per-comment view produced at
// serialization time.
type CommentRecord struct {
	Username         string
	CommentPostTime  ParsedTimestamp
	ArticleTitle     string
	ArticlePostTime  time.Time
	CommentWordCount int
	HrsToResponse    float64
}

// CommentRecords flattens the article's responses, resolving each raw
// comment timestamp. Unparseable timestamps yield HrsToResponse 0.
func (a ArticleRecord) CommentRecords() []CommentRecord {
	out := make([]CommentRecord, 0, len(a.Responses))
	for _, c := range a.Responses {
		parsed := ParseCommentTimestamp(c.PostTime)
		var hrs float64
		if parsed.OK {
			hrs = parsed.Time.Sub(a.PostTime).Hours()
		}
		out = append(out, CommentRecord{
			Username:         c.Username,
			CommentPostTime:  parsed,
			ArticleTitle:     a.Title,
			ArticlePostTime:  a.PostTime,
			CommentWordCount: WordCount(strings.ToValidUTF8(c.Post, "")),
			HrsToResponse:    hrs,
		})
	}
	return out
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
