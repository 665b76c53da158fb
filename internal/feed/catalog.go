package feed

import (
	"sync/atomic"

	"github.com/starford/postview/internal/models"
)

// Catalog maps post identifiers to records. It is replaced as a whole on
// every ingest; readers always see one complete generation.
type Catalog struct {
	posts atomic.Pointer[map[string]models.Post]
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	c := &Catalog{}
	c.Reset()
	return c
}

// Replace rebuilds the catalog from posts. Records without an identifier are
// skipped; for duplicate identifiers the last record wins.
func (c *Catalog) Replace(posts []models.Post) int {
	m := make(map[string]models.Post, len(posts))
	for _, p := range posts {
		if !p.HasSlug() {
			continue
		}
		m[p.Slug] = p
	}
	c.posts.Store(&m)
	return len(m)
}

// Reset empties the catalog.
func (c *Catalog) Reset() {
	m := map[string]models.Post{}
	c.posts.Store(&m)
}

// Lookup returns the post with identifier id.
func (c *Catalog) Lookup(id string) (models.Post, bool) {
	p, ok := (*c.posts.Load())[id]
	return p, ok
}

// Len returns the number of identifiers in the catalog.
func (c *Catalog) Len() int {
	return len(*c.posts.Load())
}
