//go:build sqlite_fts5

package index

import (
	"testing"

	"github.com/starford/postview/internal/models"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts_fts`).Scan(&count); err != nil {
		t.Fatalf("posts_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	_, err := db.ReplacePosts([]models.Post{{
		Slug:    "fts",
		Title:   "FTS Post",
		Content: "postview provides powerful full-text search capabilities.",
	}})
	if err != nil {
		t.Fatalf("ReplacePosts: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Slug != "fts" {
		t.Errorf("slug = %q", results[0].Slug)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_ReplaceClearsOldRows(t *testing.T) {
	db := testDB(t)
	_, _ = db.ReplacePosts([]models.Post{{Slug: "a", Content: "zebra"}})
	_, _ = db.ReplacePosts([]models.Post{{Slug: "b", Content: "yak"}})

	results, err := db.Search("zebra", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("stale fts rows: %+v", results)
	}
}
