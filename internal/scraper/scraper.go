package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bucsfan/sentiment-pipeline/internal/ai"
	"github.com/bucsfan/sentiment-pipeline/internal/assembler"
	"github.com/bucsfan/sentiment-pipeline/internal/models"
	"github.com/bucsfan/sentiment-pipeline/internal/rundate"
	"github.com/bucsfan/sentiment-pipeline/internal/util"
)

// publishedLayout matches the first 16 characters of the publish meta value.
const publishedLayout = "2006-01-02T15:04"

// Annotator scores sentiment for articles and comment batches.
type Annotator interface {
	AnalyzeArticle(ctx context.Context, body, title string) (ai.ArticleAnalysis, error)
	AnalyzeComments(ctx context.Context, combined string) (ai.CommentAnalysis, error)
}

// Request names the listing pages to walk and the date to keep.
type Request struct {
	BaseURL    string
	Pages      []int
	TargetDate rundate.Date
}

type Client struct {
	fetcher       Fetcher
	annotator     Annotator
	selectors     SelectorConfig
	publishOffset time.Duration
	concurrency   int
}

// New returns an extractor. concurrency bounds how many articles of one
// listing page are fetched and annotated at once; 1 keeps the run sequential.
func New(f Fetcher, a Annotator, selectors SelectorConfig, publishOffset time.Duration, concurrency int) *Client {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{
		fetcher:       f,
		annotator:     a,
		selectors:     selectors,
		publishOffset: publishOffset,
		concurrency:   concurrency,
	}
}

type candidate struct {
	link  string
	title string
}

// Extract walks the listing pages in order and returns every article
// published on the target date. Any fetch, markup or annotator failure
// aborts the whole extraction.
func (c *Client) Extract(ctx context.Context, req Request) (models.Dataset, error) {
	dataset := models.Dataset{}

	for _, page := range req.Pages {
		pageURL := PageURL(req.BaseURL, page)
		slog.Info("Scraping listing page", "page", page, "url", pageURL)

		candidates, err := c.listCandidates(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		// Results are slotted by discovery position so numbering does not
		// depend on which worker finishes first.
		results := make([]*models.ArticleRecord, len(candidates))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		for i, cand := range candidates {
			g.Go(func() error {
				rec, err := c.scrapeArticle(gctx, cand, req.TargetDate)
				if err != nil {
					return err
				}
				results[i] = rec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, rec := range results {
			if rec == nil {
				continue
			}
			rec.Key = assembler.ArticleKey(len(dataset))
			dataset = append(dataset, *rec)
		}
		slog.Info("Finished listing page", "page", page, "candidates", len(candidates), "retained_total", len(dataset))
	}

	return dataset, nil
}

func (c *Client) listCandidates(ctx context.Context, pageURL string) ([]candidate, error) {
	doc, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page %s: %w", pageURL, err)
	}

	sel := c.selectors.Listing
	var candidates []candidate
	for i, post := range doc.FindAll(sel.PostContainer) {
		anchor, ok := post.FindFirst(sel.Link)
		if !ok {
			return nil, fmt.Errorf("%w: post container %d on %s has no link", models.ErrMalformedMarkup, i, pageURL)
		}
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return nil, fmt.Errorf("%w: post container %d on %s has no href", models.ErrMalformedMarkup, i, pageURL)
		}
		link, err := util.ResolveURL(pageURL, href)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformedMarkup, err)
		}
		candidates = append(candidates, candidate{
			link:  link,
			title: collapseNewlines(anchor.Text()),
		})
	}
	return candidates, nil
}

// scrapeArticle returns nil, nil when the article falls outside the target date.
func (c *Client) scrapeArticle(ctx context.Context, cand candidate, target rundate.Date) (*models.ArticleRecord, error) {
	doc, err := c.fetcher.Fetch(ctx, cand.link)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article %s: %w", cand.link, err)
	}

	postTime, err := c.publishTime(doc, cand.link)
	if err != nil {
		return nil, err
	}
	if rundate.Of(postTime) != target {
		slog.Debug("Skipping article outside target date", "url", cand.link, "published", postTime, "target", target)
		return nil, nil
	}

	body := c.articleBody(doc)
	comments, err := c.comments(doc, cand.link)
	if err != nil {
		return nil, err
	}

	articleAnalysis, err := c.annotator.AnalyzeArticle(ctx, body, cand.title)
	if err != nil {
		return nil, fmt.Errorf("annotating article %s: %w", cand.link, err)
	}

	var commentAnalysis *ai.CommentAnalysis
	if combined := CommentPrompt(comments); strings.TrimSpace(combined) != "" {
		analysis, err := c.annotator.AnalyzeComments(ctx, combined)
		if err != nil {
			return nil, fmt.Errorf("annotating comments of %s: %w", cand.link, err)
		}
		commentAnalysis = &analysis
	}

	rec := assembler.Assemble(assembler.Extraction{
		Address:  cand.link,
		Title:    cand.title,
		Body:     body,
		PostTime: postTime,
		Comments: comments,
	}, articleAnalysis, commentAnalysis)
	slog.Info("Scraped article", "url", cand.link, "words", rec.WordCount, "comments", rec.NumberOfComments)
	return &rec, nil
}

func (c *Client) publishTime(doc *Document, link string) (time.Time, error) {
	sel := c.selectors.Article
	meta, ok := doc.FindFirst(sel.PublishedMeta)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s has no publish time element", models.ErrMalformedMarkup, link)
	}
	content, ok := meta.Attr(sel.PublishedAttr)
	if !ok || len(content) < len(publishedLayout) {
		return time.Time{}, fmt.Errorf("%w: %s has publish time %q", models.ErrMalformedMarkup, link, content)
	}
	t, err := time.Parse(publishedLayout, content[:len(publishedLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s publish time: %v", models.ErrMalformedMarkup, link, err)
	}
	return t.Add(-c.publishOffset), nil
}

func (c *Client) articleBody(doc *Document) string {
	var parts []string
	for _, n := range doc.FindAll(c.selectors.Article.Body) {
		parts = append(parts, n.Text())
	}
	return collapseNewlines(strings.Join(parts, " "))
}

func (c *Client) comments(doc *Document, link string) (models.Responses, error) {
	sel := c.selectors.Article
	responses := models.Responses{}
	for idx, li := range doc.FindAll(sel.Comment) {
		author, ok := li.FindFirst(sel.CommentAuthor)
		if !ok {
			return nil, fmt.Errorf("%w: comment %d on %s has no %s", models.ErrMalformedMarkup, idx, link, sel.CommentAuthor)
		}
		body, ok := li.FindFirst(sel.CommentBody)
		if !ok {
			return nil, fmt.Errorf("%w: comment %d on %s has no %s", models.ErrMalformedMarkup, idx, link, sel.CommentBody)
		}
		stamp, ok := li.FindFirst(sel.CommentTime)
		if !ok {
			return nil, fmt.Errorf("%w: comment %d on %s has no %s", models.ErrMalformedMarkup, idx, link, sel.CommentTime)
		}
		responses = append(responses, models.CommentEntry{
			Key:      models.CommentKey(idx),
			Username: author.Text(),
			Post:     collapseNewlines(body.Text()),
			PostTime: models.RawCommentTimestamp(strings.Fields(stamp.Text())),
		})
	}
	return responses, nil
}

// CommentPrompt joins "<key>:<body>" for every comment and collapses long
// runs of a repeated character.
func CommentPrompt(comments models.Responses) string {
	parts := make([]string, len(comments))
	for i, c := range comments {
		parts[i] = c.Key + ":" + c.Post
	}
	return CollapseRepeats(strings.Join(parts, " "))
}
