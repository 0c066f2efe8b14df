package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

// Fetcher retrieves and parses a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Document, error)
}

// HTTPFetcher fetches pages over HTTP from an allowlist of hosts.
type HTTPFetcher struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	allowedDomains []string
}

func NewHTTPFetcher(timeout time.Duration, requestsPerSecond float64, allowedDomains []string) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient:     &http.Client{Timeout: timeout},
		rateLimiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		allowedDomains: allowedDomains,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, urlStr string) (*Document, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse URL %s: %v", models.ErrFetch, urlStr, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: invalid URL scheme %q: only http and https allowed", models.ErrFetch, parsedURL.Scheme)
	}

	if !f.isAllowed(parsedURL.Hostname()) {
		return nil, fmt.Errorf("%w: URL hostname %s is not in allowlist", models.ErrFetch, parsedURL.Hostname())
	}

	if err := f.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request for URL %s: %v", models.ErrFetch, urlStr, err)
	}

	res, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch URL %s: %v", models.ErrFetch, urlStr, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: URL %s returned status code %d", models.ErrFetch, urlStr, res.StatusCode)
	}

	body, err := charset.NewReader(res.Body, res.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", models.ErrFetch, urlStr, err)
	}
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", models.ErrFetch, urlStr, err)
	}
	return doc, nil
}

func (f *HTTPFetcher) isAllowed(hostname string) bool {
	if len(f.allowedDomains) == 0 {
		return true
	}
	for _, domain := range f.allowedDomains {
		if strings.EqualFold(hostname, domain) {
			return true
		}
	}
	return false
}
