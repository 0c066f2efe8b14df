package util

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveURL resolves href against base and drops tracking parameters and
// fragments. Absolute hrefs are returned cleaned but otherwise unchanged.
func ResolveURL(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href, fmt.Errorf("invalid link %q: %w", href, err)
	}

	resolved := baseURL.ResolveReference(ref)
	resolved.Fragment = ""
	queryParams := resolved.Query()
	utmParams := []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}
	changed := false
	for _, param := range utmParams {
		if queryParams.Has(param) {
			queryParams.Del(param)
			changed = true
		}
	}
	if changed {
		resolved.RawQuery = queryParams.Encode()
	}
	return resolved.String(), nil
}
