package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
	"github.com/bucsfan/sentiment-pipeline/internal/util"
)

func testRun() *models.RunContext {
	run := models.NewRunContext(time.Date(2024, time.January, 7, 6, 0, 0, 0, time.UTC), 2)
	run.Manifest.ArticleCount = 3
	run.Manifest.CommentCount = 12
	run.Manifest.ArticlesKey = "joebucs/data_01052024.csv"
	run.Manifest.CommentsKey = "joebucs/comments_01052024.csv"
	run.Manifest.Loaded = true
	return run
}

func newTestClient(url string) *Client {
	client := New(url)
	// Override rate limiter for tests to run fast
	client.rateLimiter = rate.NewLimiter(rate.Inf, 1)
	return client
}

func TestMain(m *testing.M) {
	util.BaseBackoff = 10 * time.Millisecond
	m.Run()
}

func TestFormatRunEmbed(t *testing.T) {
	embed := formatRunEmbed(testRun())

	if embed.Title != "JoeBucsFan sentiment run 2024-01-05" {
		t.Errorf("Title incorrect. Got: %s", embed.Title)
	}
	if embed.Color != colorLoaded {
		t.Errorf("Expected loaded color, got %d", embed.Color)
	}
	if embed.Footer.Text != "Stamp 01052024" {
		t.Errorf("Footer incorrect. Got: %s", embed.Footer.Text)
	}

	want := map[string]string{
		"Articles":  "3",
		"Comments":  "12",
		"Warehouse": "loaded",
		"Uploaded":  "joebucs/data_01052024.csv\njoebucs/comments_01052024.csv",
	}
	got := make(map[string]string)
	for _, f := range embed.Fields {
		got[f.Name] = f.Value
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("field %s = %q, want %q", name, got[name], v)
		}
	}
}

func TestFormatRunEmbed_NoArticles(t *testing.T) {
	run := models.NewRunContext(time.Date(2024, time.January, 7, 6, 0, 0, 0, time.UTC), 2)
	embed := formatRunEmbed(run)
	if embed.Color != colorNoArticles {
		t.Errorf("Expected empty-run color, got %d", embed.Color)
	}
	for _, f := range embed.Fields {
		if f.Name == "Uploaded" {
			t.Error("Uploaded field should be omitted when nothing was uploaded")
		}
	}
}

func TestClient_NotifyRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		var payload discordWebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if len(payload.Embeds) != 1 {
			t.Errorf("Expected 1 embed, got %d", len(payload.Embeds))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).NotifyRun(context.Background(), testRun()); err != nil {
		t.Fatalf("NotifyRun() returned error: %v", err)
	}
}

func TestClient_NotifyRun_RetriesOn5xx(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempt := atomic.AddInt32(&attempts, 1)
		if attempt <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message": "server error"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).NotifyRun(context.Background(), testRun()); err != nil {
		t.Fatalf("NotifyRun() should have succeeded after retries, got error: %v", err)
	}
	if atomic.LoadInt32(&attempts) != 3 {
		t.Errorf("Expected 3 attempts (2 failures + 1 success), got %d", atomic.LoadInt32(&attempts))
	}
}

func TestClient_NotifyRun_RetriesOn429(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempt := atomic.AddInt32(&attempts, 1)
		if attempt == 1 {
			w.Header().Set("Retry-After", "0.05")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"message": "rate limited"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).NotifyRun(context.Background(), testRun()); err != nil {
		t.Fatalf("NotifyRun() should have succeeded after 429 retry, got error: %v", err)
	}
	if atomic.LoadInt32(&attempts) != 2 {
		t.Errorf("Expected 2 attempts, got %d", atomic.LoadInt32(&attempts))
	}
}

func TestClient_NotifyRun_NoRetryOn4xx(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "bad request"}`))
	}))
	defer server.Close()

	if err := newTestClient(server.URL).NotifyRun(context.Background(), testRun()); err == nil {
		t.Fatal("NotifyRun() should have returned error for 400 response")
	}
	if atomic.LoadInt32(&attempts) != 1 {
		t.Errorf("Expected 1 attempt (no retry for 400), got %d", atomic.LoadInt32(&attempts))
	}
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		retryAfter string
		attempt    int
		wantZero   bool
	}{
		{"429 with Retry-After", 429, "2", 0, false},
		{"429 without Retry-After", 429, "", 0, false},
		{"500 error", 500, "", 0, false},
		{"503 error", 503, "", 1, false},
		{"400 error", 400, "", 0, true},
		{"404 error", 404, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: tt.statusCode,
				Header:     http.Header{},
			}
			if tt.retryAfter != "" {
				resp.Header.Set("Retry-After", tt.retryAfter)
			}

			backoff := retryBackoff(resp, tt.attempt)
			if tt.wantZero && backoff != 0 {
				t.Errorf("Expected zero backoff for status %d, got %v", tt.statusCode, backoff)
			}
			if !tt.wantZero && backoff == 0 {
				t.Errorf("Expected non-zero backoff for status %d, got 0", tt.statusCode)
			}
		})
	}
}

func TestClient_NotifyRun_EmptyWebhookURL(t *testing.T) {
	c := New("")
	if err := c.NotifyRun(context.Background(), testRun()); err != nil {
		t.Fatalf("NotifyRun() with empty webhook should be a no-op, got %v", err)
	}
}
