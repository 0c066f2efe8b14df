package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// CommentKeyPrefix prefixes the synthetic per-article comment keys.
const CommentKeyPrefix = "commenter"

// CommentEntry is one comment as found on an article page.
type CommentEntry struct {
	Key      string              `json:"-"`
	Username string              `json:"username"`
	Post     string              `json:"post"`
	PostTime RawCommentTimestamp `json:"post_time"`
}

// CommentKey returns the synthetic key for the comment at position idx.
func CommentKey(idx int) string {
	return CommentKeyPrefix + strconv.Itoa(idx)
}

// Responses is an ordered mapping from synthetic comment key to entry. It
// encodes as a JSON object whose members keep discovery order.
type Responses []CommentEntry

// Keys returns the comment keys in order.
func (r Responses) Keys() []string {
	keys := make([]string, len(r))
	for i, c := range r {
		keys[i] = c.Key
	}
	return keys
}

func (r Responses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Responses) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("responses: expected object, got %v", tok)
	}

	out := Responses{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("responses: expected string key, got %v", tok)
		}
		var entry CommentEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("responses: decoding %s: %w", key, err)
		}
		entry.Key = key
		out = append(out, entry)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}
