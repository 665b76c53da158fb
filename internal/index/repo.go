package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/postview/internal/apperr"
	"github.com/starford/postview/internal/dates"
	"github.com/starford/postview/internal/models"
)

// PostRow is a listing row from the posts table.
type PostRow struct {
	Slug     string `json:"slug"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Excerpt  string `json:"excerpt"`
	ImageURL string `json:"image_url,omitempty"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// IngestRow is one accepted payload in the ingest log.
type IngestRow struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Checksum  string    `json:"checksum"`
	Posts     int       `json:"posts"`
	Indexed   int       `json:"indexed"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplacePosts swaps the indexed posts for posts within one transaction.
// Posts without a slug are not addressable and are skipped; for duplicate
// slugs the last one wins, including its position. It returns the number of
// distinct slugs indexed.
func (db *DB) ReplacePosts(posts []models.Post) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM posts`); err != nil {
		return 0, fmt.Errorf("index: clear posts: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO posts (slug, position, title, date, excerpt, content, image_url, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			position  = excluded.position,
			title     = excluded.title,
			date      = excluded.date,
			excerpt   = excluded.excerpt,
			content   = excluded.content,
			image_url = excluded.image_url,
			raw       = excluded.raw
	`)
	if err != nil {
		return 0, fmt.Errorf("index: prepare post insert: %w", err)
	}
	defer stmt.Close()

	last := make(map[string]models.Post, len(posts))
	for i, p := range posts {
		if !p.HasSlug() {
			continue
		}
		raw, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("index: encode post %q: %w", p.Slug, err)
		}
		if _, err := stmt.Exec(p.Slug, i, p.Title, dates.Display(p.Date), p.Excerpt, p.Content, p.ImageURL, string(raw)); err != nil {
			return 0, fmt.Errorf("index: insert post %q: %w", p.Slug, err)
		}
		last[p.Slug] = p
	}
	for _, p := range last {
		if err := ftsInsert(tx, p.Slug, p.Title, p.Excerpt, p.Content); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("index: commit: %w", err)
	}
	return len(last), nil
}

// GetPost returns the full record stored for slug.
func (db *DB) GetPost(slug string) (*models.Post, error) {
	var raw string
	err := db.conn.QueryRow(`SELECT raw FROM posts WHERE slug = ?`, slug).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: post %q: %w", slug, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	var p models.Post
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("index: decode post %q: %w", slug, err)
	}
	return &p, nil
}

// ListPosts returns posts in feed order and the total count.
func (db *DB) ListPosts(limit, offset int) ([]PostRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT slug, position, title, date, excerpt, image_url
		FROM posts
		ORDER BY position
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	out := make([]PostRow, 0, limit)
	for rows.Next() {
		var r PostRow
		if err := rows.Scan(&r.Slug, &r.Position, &r.Title, &r.Date, &r.Excerpt, &r.ImageURL); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// RecordIngest appends r to the ingest log and returns it with ID and time set.
func (db *DB) RecordIngest(r IngestRow) (IngestRow, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := db.conn.Exec(`
		INSERT INTO ingests (source, checksum, posts, indexed, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.Source, r.Checksum, r.Posts, r.Indexed, r.CreatedAt)
	if err != nil {
		return r, fmt.Errorf("index: record ingest: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return r, nil
}

// LastIngest returns the most recent ingest log entry, or ErrNotFound.
func (db *DB) LastIngest() (*IngestRow, error) {
	var r IngestRow
	err := db.conn.QueryRow(`
		SELECT id, source, checksum, posts, indexed, created_at
		FROM ingests
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&r.ID, &r.Source, &r.Checksum, &r.Posts, &r.Indexed, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: last ingest: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: last ingest: %w", err)
	}
	return &r, nil
}
