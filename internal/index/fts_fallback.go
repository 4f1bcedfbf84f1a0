//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the notes table is the search corpus; these hooks are no-ops.

func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string, _ []string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches query as a literal substring of title, body or tags.
// Title hits rank ahead of body and tag hits.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT path, title, substr(body, 1, 200)
		FROM notes
		WHERE title LIKE ?1 ESCAPE '\'
		   OR body  LIKE ?1 ESCAPE '\'
		   OR tags  LIKE ?1 ESCAPE '\'
		ORDER BY (title LIKE ?1 ESCAPE '\') DESC, path
		LIMIT ?2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := make([]SearchResult, 0)
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan hit: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
