package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/topicscout/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertNote inserts or replaces a note, its FTS entry, and links within a transaction.
func (db *DB) UpsertNote(n models.Note, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(nonNil(n.Tags))
	linksJSON, _ := json.Marshal(nonNil(n.Links))

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, checksum, tags, links, body, word_count, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			checksum    = excluded.checksum,
			tags        = excluded.tags,
			links       = excluded.links,
			body        = excluded.body,
			word_count  = excluded.word_count,
			modified_at = excluded.modified_at
	`, n.Path, n.Title, checksum, string(tagsJSON), string(linksJSON), n.Body, n.WordCount, n.ModifiedAt.UTC())
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	if err := ftsUpsert(tx, n.Path, n.Title, n.Body, n.Tags); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, n.Path)
	if len(n.Links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range n.Links {
			if _, err := stmt.Exec(n.Path, strings.ToLower(target)); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNote removes a note, its FTS entry, and outgoing links.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// Notes returns every indexed note ordered by path.
func (db *DB) Notes(ctx context.Context) ([]models.Note, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT path, title, tags, links, body, word_count, modified_at
		FROM notes
		ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: notes: %w", err)
	}
	defer rows.Close()

	out := make([]models.Note, 0)
	for rows.Next() {
		var (
			n                   models.Note
			tagsJSON, linksJSON string
			modified            time.Time
		)
		if err := rows.Scan(&n.Path, &n.Title, &tagsJSON, &linksJSON, &n.Body, &n.WordCount, &modified); err != nil {
			return nil, fmt.Errorf("index: scan note: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
			return nil, fmt.Errorf("index: decode tags for %s: %w", n.Path, err)
		}
		if err := json.Unmarshal([]byte(linksJSON), &n.Links); err != nil {
			return nil, fmt.Errorf("index: decode links for %s: %w", n.Path, err)
		}
		n.ModifiedAt = modified
		out = append(out, n)
	}
	return out, rows.Err()
}

// Backlinks returns all note paths linking to target, matched on the
// lower-cased link text.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM links WHERE target = ? ORDER BY source`, strings.ToLower(target))
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
