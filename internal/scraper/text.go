package scraper

import (
	"strconv"
	"strings"
)

// maxRepeat is the longest run of one character passed to the annotator.
const maxRepeat = 4

// PageURL maps a 1-based listing page number to its URL.
func PageURL(baseURL string, page int) string {
	if page == 1 {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/page/" + strconv.Itoa(page) + "/"
}

func collapseNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// CollapseRepeats shortens every run of five or more identical characters
// to exactly four. Newlines are never collapsed.
func CollapseRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	run := 0
	for i, r := range s {
		if i > 0 && r == prev && r != '\n' {
			run++
		} else {
			run = 1
		}
		prev = r
		if run <= maxRepeat {
			b.WriteRune(r)
		}
	}
	return b.String()
}
