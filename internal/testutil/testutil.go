// Package testutil provides shared test helpers for content dirs, databases
// and a fully wired blog service.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/postview/internal/blog"
	"github.com/starford/postview/internal/index"
	"github.com/starford/postview/internal/session"
	"github.com/starford/postview/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "postview-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestContent creates a temporary content directory with a storage.Provider.
func TestContent(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestService wires a blog service in feed mode over a temp content dir and
// database, with a session manager attached.
func TestService(t *testing.T, opts ...blog.Option) *blog.Service {
	t.Helper()
	_, store := TestContent(t)
	base := []blog.Option{
		blog.WithStore(store, blog.ModeFeed, "feed.json"),
		blog.WithSessions(session.NewManager()),
	}
	return blog.NewService(TestDB(t), append(base, opts...)...)
}
