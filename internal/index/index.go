package index

import "github.com/starford/postview/internal/models"

// PostIndex defines the interface for post indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PostIndex interface {
	ReplacePosts(posts []models.Post) (int, error)
	GetPost(slug string) (*models.Post, error)
	ListPosts(limit, offset int) ([]PostRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	RecordIngest(r IngestRow) (IngestRow, error)
	LastIngest() (*IngestRow, error)
	Close() error
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)
