// Package parser turns Markdown post files with YAML frontmatter into posts.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/postview/internal/models"
)

// Result holds the output of parsing a Markdown post file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Title       string
}

// Parse splits frontmatter from body and derives the title.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
	}, nil
}

// Post builds a post record from the parsed file. The slug defaults to the
// file name without extension; the excerpt defaults to the first paragraph.
func (r *Result) Post(filePath string) models.Post {
	p := models.Post{
		Slug:     r.str("slug"),
		Title:    r.Title,
		Date:     r.date(),
		Excerpt:  r.str("excerpt"),
		Content:  strings.TrimRight(r.Body, "\n"),
		ImageURL: r.str("image_url"),
	}
	if p.Slug == "" {
		base := path.Base(strings.ReplaceAll(filePath, "\\", "/"))
		p.Slug = strings.TrimSuffix(base, path.Ext(base))
	}
	if p.Excerpt == "" {
		p.Excerpt = firstParagraph(r.Body)
	}
	return p
}

func (r *Result) str(key string) string {
	v, ok := r.Frontmatter[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// date keeps YAML timestamps as calendar dates and leaves other values raw.
func (r *Result) date() any {
	v, ok := r.Frontmatter["date"]
	if !ok || v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Location() == time.UTC {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	}
	return v
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. Missing or invalid frontmatter yields the whole input as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, string(data)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body
}

// deriveTitle prefers frontmatter "title", then the first H1 heading.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// firstParagraph returns the first non-heading block of body.
func firstParagraph(body string) string {
	for _, block := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		return block
	}
	return ""
}
