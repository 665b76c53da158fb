// Package models defines the domain types for postview.
package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Post is one blog entry as delivered by the feed.
//
// Slug is the post identifier; an empty Slug means the record has none and it
// is rendered without a reader link. Date keeps the raw feed value (string,
// epoch-milliseconds number or nil) so display formatting can decide how to
// interpret it.
type Post struct {
	Slug     string `json:"slug,omitempty"`
	Title    string `json:"title"`
	Date     any    `json:"date,omitempty"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url,omitempty"`
}

// HasSlug reports whether the post can be opened in the reader.
func (p Post) HasSlug() bool {
	return p.Slug != ""
}

// UnmarshalJSON decodes a post leniently: scalar fields of any JSON type are
// stringified and falsy values (null, false, 0, "") become empty strings.
func (p *Post) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Post{
		Slug:     looseString(raw["slug"]),
		Title:    looseString(raw["title"]),
		Date:     raw["date"],
		Excerpt:  looseString(raw["excerpt"]),
		Content:  looseString(raw["content"]),
		ImageURL: looseString(raw["image_url"]),
	}
	return nil
}

// Payload is the envelope posted by a feed: {"posts": [...]}.
type Payload struct {
	Posts []Post `json:"posts"`
}

// Len returns the number of posts, treating a nil payload as empty.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Posts)
}

// FileMetadata is a lightweight description of a content file.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

func looseString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
