package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
	"github.com/bucsfan/sentiment-pipeline/internal/util"
)

const (
	colorNoArticles = 3092790  // #2F3136
	colorLoaded     = 3066993  // #2ECC71
	colorScraped    = 16753920 // #FFA500

	maxRetries = 3
)

type Client struct {
	webhookURL  string
	client      *http.Client
	rateLimiter *rate.Limiter
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL:  webhookURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// NotifyRun posts a summary of run to the webhook. It does nothing when no
// webhook is configured.
func (c *Client) NotifyRun(ctx context.Context, run *models.RunContext) error {
	if c.webhookURL == "" {
		return nil
	}
	return c.post(ctx, discordWebhookPayload{Embeds: []discordEmbed{formatRunEmbed(run)}})
}

// Internal structures
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
}

func formatRunEmbed(run *models.RunContext) discordEmbed {
	m := run.Manifest

	color := colorScraped
	switch {
	case m.ArticleCount == 0:
		color = colorNoArticles
	case m.Loaded:
		color = colorLoaded
	}

	fields := []discordEmbedField{
		{Name: "Articles", Value: strconv.Itoa(m.ArticleCount), Inline: true},
		{Name: "Comments", Value: strconv.Itoa(m.CommentCount), Inline: true},
		{Name: "Warehouse", Value: loadedLabel(m.Loaded), Inline: true},
	}
	if m.ArticlesKey != "" || m.CommentsKey != "" {
		fields = append(fields, discordEmbedField{
			Name:  "Uploaded",
			Value: nonEmpty(m.ArticlesKey) + "\n" + nonEmpty(m.CommentsKey),
		})
	}
	if len(m.ExportFiles) > 0 {
		fields = append(fields, discordEmbedField{Name: "Exports", Value: strconv.Itoa(len(m.ExportFiles)) + " workbook(s)", Inline: true})
	}

	var ts string
	if !run.StartedAt.IsZero() {
		ts = run.StartedAt.UTC().Format(time.RFC3339)
	}

	return discordEmbed{
		Title:       "JoeBucsFan sentiment run " + run.TargetDate.String(),
		Description: fmt.Sprintf("Posts published on %s", run.TargetDate),
		Timestamp:   ts,
		Color:       color,
		Fields:      fields,
		Footer:      discordEmbedFooter{Text: "Stamp " + m.Stamp},
	}
}

func loadedLabel(loaded bool) string {
	if loaded {
		return "loaded"
	}
	return "skipped"
}

func nonEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (c *Client) post(ctx context.Context, payload discordWebhookPayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return util.RetryWithBackoff(ctx, maxRetries, func(attempt int) error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return util.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payloadBytes))
		if err != nil {
			return util.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		statusErr := fmt.Errorf("discord status: %s, body: %s", resp.Status, string(bodyBytes))
		backoff := retryBackoff(resp, attempt)
		if backoff == 0 {
			return util.Permanent(statusErr)
		}
		return util.RetryAfter(statusErr, backoff)
	})
}

// retryBackoff returns how long to wait before retrying resp, or 0 if the
// status is not retryable.
func retryBackoff(resp *http.Response, attempt int) time.Duration {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
		return time.Duration(1<<attempt) * util.BaseBackoff
	case resp.StatusCode >= 500:
		return time.Duration(1<<attempt) * util.BaseBackoff
	default:
		return 0
	}
}
