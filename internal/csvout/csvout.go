// Package csvout renders run datasets as pipe-delimited files with a fixed
// column order and no header row.
package csvout

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

// Delimiter separates fields; article and comment text routinely contain commas.
const Delimiter = '|'

// TimestampLayout renders every timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

type Kind int

const (
	KindArticle Kind = iota
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindArticle:
		return "article"
	case KindComment:
		return "comment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type articleColumn struct {
	name   string
	render func(models.ArticleRecord) (string, error)
}

var articleColumns = []articleColumn{
	{"address", func(a models.ArticleRecord) (string, error) { return a.Address, nil }},
	{"title", func(a models.ArticleRecord) (string, error) { return a.Title, nil }},
	{"post", func(a models.ArticleRecord) (string, error) { return a.Post, nil }},
	{"post_time", func(a models.ArticleRecord) (string, error) { return formatTime(a.PostTime.IsZero(), a.PostTime.Format(TimestampLayout)), nil }},
	{"word_count", func(a models.ArticleRecord) (string, error) { return strconv.Itoa(a.WordCount), nil }},
	{"number_of_comments", func(a models.ArticleRecord) (string, error) { return strconv.Itoa(a.NumberOfComments), nil }},
	{"article_sentiment_score", func(a models.ArticleRecord) (string, error) { return a.ArticleSentimentScore, nil }},
	{"article_subject", func(a models.ArticleRecord) (string, error) { return a.ArticleSubject, nil }},
	{"article_summary", func(a models.ArticleRecord) (string, error) { return a.ArticleSummary, nil }},
	{"response_sentiment_score", func(a models.ArticleRecord) (string, error) {
		if a.ResponseSentimentScore == nil {
			return "", nil
		}
		return *a.ResponseSentimentScore, nil
	}},
	{"response_summary", func(a models.ArticleRecord) (string, error) { return a.ResponseSummary, nil }},
	{"responses", func(a models.ArticleRecord) (string, error) {
		data, err := json.Marshal(a.Responses)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}},
}

// ArticleColumns lists the article file's columns in order.
func ArticleColumns() []string {
	names := make([]string, len(articleColumns))
	for i, c := range articleColumns {
		names[i] = c.name
	}
	return names
}

// CommentColumns lists the comment file's columns in order.
func CommentColumns() []string {
	return []string{"username", "comment_post_time", "article_title", "article_post_time", "comment_word_count", "hrs_to_response"}
}

// Write serializes dataset as kind to w.
func Write(w io.Writer, dataset models.Dataset, kind Kind) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	cw.UseCRLF = true

	var err error
	switch kind {
	case KindArticle:
		err = writeArticles(cw, dataset)
	case KindComment:
		err = writeComments(cw, dataset)
	default:
		err = fmt.Errorf("unknown dataset kind %v", kind)
	}
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile serializes dataset into path, creating parent directories.
func WriteFile(path string, dataset models.Dataset, kind Kind) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, dataset, kind); err != nil {
		f.Close()
		return fmt.Errorf("writing %s file %s: %w", kind, path, err)
	}
	return f.Close()
}

func writeArticles(cw *csv.Writer, dataset models.Dataset) error {
	row := make([]string, len(articleColumns))
	for _, a := range dataset {
		for i, col := range articleColumns {
			v, err := col.render(a)
			if err != nil {
				return fmt.Errorf("%s of %s: %w", col.name, a.Key, err)
			}
			row[i] = v
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeComments(cw *csv.Writer, dataset models.Dataset) error {
	for _, a := range dataset {
		for _, c := range a.CommentRecords() {
			row := []string{
				c.Username,
				formatTime(!c.CommentPostTime.OK, c.CommentPostTime.Time.Format(TimestampLayout)),
				c.ArticleTitle,
				formatTime(c.ArticlePostTime.IsZero(), c.ArticlePostTime.Format(TimestampLayout)),
				strconv.Itoa(c.CommentWordCount),
				strconv.FormatFloat(c.HrsToResponse, 'f', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatTime(empty bool, formatted string) string {
	if empty {
		return ""
	}
	return formatted
}
