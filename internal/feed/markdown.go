package feed

import (
	"fmt"
	"sort"

	"github.com/starford/postview/internal/dates"
	"github.com/starford/postview/internal/models"
	"github.com/starford/postview/internal/parser"
	"github.com/starford/postview/internal/storage"
)

// LoadMarkdown builds a payload from every .md file under dir. Posts are
// ordered newest first, ties broken by path.
func LoadMarkdown(store storage.Provider, dir string) (*models.Payload, error) {
	files, err := store.List(dir, ".md")
	if err != nil {
		return nil, fmt.Errorf("feed: list markdown: %w", err)
	}

	type entry struct {
		path string
		key  string
		post models.Post
	}
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		data, err := store.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("feed: read %s: %w", f.Path, err)
		}
		res, err := parser.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("feed: parse %s: %w", f.Path, err)
		}
		p := res.Post(f.Path)
		entries = append(entries, entry{path: f.Path, key: dates.Display(p.Date), post: p})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key > entries[j].key
		}
		return entries[i].path < entries[j].path
	})

	out := &models.Payload{Posts: make([]models.Post, 0, len(entries))}
	for _, e := range entries {
		out.Posts = append(out.Posts, e.post)
	}
	return out, nil
}
