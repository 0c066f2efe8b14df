package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseCommentTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawCommentTimestamp
		want   time.Time
		wantOK bool
	}{
		{
			name:   "ordinal th",
			raw:    RawCommentTimestamp{"January", "5th,", "2024", "at", "3:30", "PM"},
			want:   time.Date(2024, time.January, 5, 15, 30, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "ordinal st in August",
			raw:    RawCommentTimestamp{"August", "1st,", "2023", "at", "11:05", "AM"},
			want:   time.Date(2023, time.August, 1, 11, 5, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "ordinal nd two digit day",
			raw:    RawCommentTimestamp{"October", "22nd,", "2023", "at", "12:00", "AM"},
			want:   time.Date(2023, time.October, 22, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "garbled", raw: RawCommentTimestamp{"garbled"}},
		{name: "empty", raw: RawCommentTimestamp{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCommentTimestamp(tt.raw)
			if got.OK != tt.wantOK {
				t.Fatalf("OK = %v, want %v", got.OK, tt.wantOK)
			}
			if tt.wantOK && !got.Time.Equal(tt.want) {
				t.Errorf("Time = %v, want %v", got.Time, tt.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("one two  three"); got != 3 {
		t.Errorf("WordCount() = %d, want 3", got)
	}
	if got := WordCount("   "); got != 0 {
		t.Errorf("WordCount(blank) = %d, want 0", got)
	}
}

func TestResponses_JSONRoundTrip(t *testing.T) {
	var in Responses
	for i := 0; i < 12; i++ {
		in = append(in, CommentEntry{
			Key:      CommentKey(i),
			Username: "fan",
			Post:     "Go Bucs",
			PostTime: RawCommentTimestamp{"January", "5th,", "2024"},
		})
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out Responses
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d entries, want %d", len(out), len(in))
	}
	for i, key := range out.Keys() {
		if key != CommentKey(i) {
			t.Errorf("key[%d] = %s, want %s", i, key, CommentKey(i))
		}
	}
	if out[11].PostTime.String() != "January 5th, 2024" {
		t.Errorf("post_time = %q", out[11].PostTime.String())
	}
}

func TestResponses_EmptyMarshalsAsObject(t *testing.T) {
	data, err := json.Marshal(Responses(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("Marshal(nil) = %s, want {}", data)
	}
}

func TestArticleRecord_CommentRecords(t *testing.T) {
	posted := time.Date(2024, time.January, 5, 11, 0, 0, 0, time.UTC)
	a := ArticleRecord{
		Title:    "Bucs win",
		PostTime: posted,
		Responses: Responses{
			{Key: "commenter0", Username: "a", Post: "great game today", PostTime: RawCommentTimestamp{"January", "5th,", "2024", "at", "3:30", "PM"}},
			{Key: "commenter1", Username: "b", Post: "meh", PostTime: RawCommentTimestamp{"garbled"}},
		},
	}

	recs := a.CommentRecords()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].HrsToResponse != 4.5 {
		t.Errorf("HrsToResponse = %v, want 4.5", recs[0].HrsToResponse)
	}
	if recs[0].CommentWordCount != 3 {
		t.Errorf("CommentWordCount = %d, want 3", recs[0].CommentWordCount)
	}
	if recs[1].CommentPostTime.OK || recs[1].HrsToResponse != 0 {
		t.Errorf("unparseable comment should give zero hours, got %+v", recs[1])
	}
	if recs[1].ArticleTitle != "Bucs win" {
		t.Errorf("ArticleTitle = %s", recs[1].ArticleTitle)
	}
}

func TestNewRunContext(t *testing.T) {
	now := time.Date(2024, time.January, 7, 6, 0, 0, 0, time.UTC)
	run := NewRunContext(now, 2)
	if run.ArticlesName() != "data_01052024.csv" {
		t.Errorf("ArticlesName() = %s", run.ArticlesName())
	}
	if run.CommentsName() != "comments_01052024.csv" {
		t.Errorf("CommentsName() = %s", run.CommentsName())
	}
}
