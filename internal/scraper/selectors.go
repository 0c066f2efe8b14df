package scraper

import (
	"encoding/json"
	"fmt"
	"os"
)

type SelectorConfig struct {
	Listing ListSelectors    `json:"listing"`
	Article ArticleSelectors `json:"article"`
}

type ListSelectors struct {
	PostContainer string `json:"post_container"` // e.g., "div.post"
	Link          string `json:"link"`           // first match supplies href and title
}

type ArticleSelectors struct {
	PublishedMeta string `json:"published_meta"`
	PublishedAttr string `json:"published_attr"`
	Body          string `json:"body"`
	Comment       string `json:"comment"`
	CommentAuthor string `json:"comment_author"`
	CommentBody   string `json:"comment_body"`
	CommentTime   string `json:"comment_time"`
}

// LoadSelectors loads the selector configuration from the specified JSON file.
func LoadSelectors(path string) (SelectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to read selector config file: %w", err)
	}

	return LoadSelectorsFromBytes(data)
}

// LoadSelectorsFromBytes parses selector configuration from raw JSON bytes.
// Fields left empty in the JSON keep their default values.
func LoadSelectorsFromBytes(data []byte) (SelectorConfig, error) {
	config := DefaultSelectors()
	if err := json.Unmarshal(data, &config); err != nil {
		return SelectorConfig{}, fmt.Errorf("failed to parse selector config JSON: %w", err)
	}

	return config, nil
}

// DefaultSelectors returns the fallback configuration if no JSON file is loaded.
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		Listing: ListSelectors{
			PostContainer: "div.post",
			Link:          "a",
		},
		Article: ArticleSelectors{
			PublishedMeta: `meta[property="article:published_time"]`,
			PublishedAttr: "content",
			Body:          `[style="text-align: left;"]`,
			Comment:       `li[id*="comment"]`,
			CommentAuthor: "cite",
			CommentBody:   "p",
			CommentTime:   "a",
		},
	}
}
