//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the catalog searches documents.body with LIKE.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// Search returns documents whose title or body contains query, titles first,
// with a window of body text around the first match.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if strings.TrimSpace(query) == "" {
		return []SearchResult{}, nil
	}
	like := likePattern(query)
	rows, err := db.conn.Query(`
		SELECT path, title, substr(body, max(1, instr(lower(body), lower(?)) - 40), 120)
		FROM documents
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
		ORDER BY (title LIKE ? ESCAPE '\') DESC, path
		LIMIT ?
	`, query, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
