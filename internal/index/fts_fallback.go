//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the posts table.
	return nil
}

func ftsClear(_ *sql.Tx) error { return nil }

func ftsInsert(_ *sql.Tx, _, _, _, _ string) error { return nil }

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT slug, title, substr(CASE WHEN excerpt != '' THEN excerpt ELSE content END, 1, 200)
		FROM posts
		WHERE title LIKE ? ESCAPE '\' OR excerpt LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\'
		ORDER BY position
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
