package models

import (
	"strings"
	"time"
)

// CommentTimeLayout is the display format of comment timestamps once the
// ordinal suffix has been removed, e.g. "January 5 2024 at 3:30 PM".
const CommentTimeLayout = "January 2 2006 at 3:04 PM"

var ordinalSuffixes = []string{"st,", "nd,", "rd,", "th,"}

// RawCommentTimestamp is the comment's display timestamp split into tokens,
// kept unparsed until serialization.
type RawCommentTimestamp []string

func (r RawCommentTimestamp) String() string {
	return strings.Join(r, " ")
}

// ParsedTimestamp is the result of resolving a RawCommentTimestamp.
// OK is false when the display string did not match CommentTimeLayout.
type ParsedTimestamp struct {
	Time time.Time
	OK   bool
}

// ParseCommentTimestamp strips ordinal suffixes and parses the display
// string. A mismatch is not an error; it yields a zero ParsedTimestamp.
func ParseCommentTimestamp(raw RawCommentTimestamp) ParsedTimestamp {
	s := raw.String()
	for _, suffix := range ordinalSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	t, err := time.Parse(CommentTimeLayout, s)
	if err != nil {
		return ParsedTimestamp{}
	}
	return ParsedTimestamp{Time: t, OK: true}
}
