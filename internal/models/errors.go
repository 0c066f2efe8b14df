package models

import "errors"

var (
	// ErrMalformedResponse is returned when an annotator reply does not carry
	// the expected number of delimited fields.
	ErrMalformedResponse = errors.New("malformed annotator response")

	// ErrMalformedMarkup is returned when a page lacks an element or attribute
	// the extractor cannot proceed without.
	ErrMalformedMarkup = errors.New("malformed markup")

	// ErrFetch is returned for transport failures and non-2xx responses.
	ErrFetch = errors.New("fetch failed")
)
