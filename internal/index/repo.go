package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/models"
)

// SearchResult represents one catalog hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertDocument inserts or replaces a catalog entry and its FTS row within a transaction.
func (db *DB) UpsertDocument(e models.CatalogEntry, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, checksum, paragraph_count, outline_count, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title           = excluded.title,
			checksum        = excluded.checksum,
			paragraph_count = excluded.paragraph_count,
			outline_count   = excluded.outline_count,
			body            = excluded.body,
			updated_at      = excluded.updated_at
	`, e.Path, e.Title, e.Checksum, e.ParagraphCount, e.OutlineCount, body, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, e.Path, e.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteDocument removes a catalog entry and its FTS row.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetDocument returns one catalog entry.
func (db *DB) GetDocument(path string) (*models.CatalogEntry, error) {
	var e models.CatalogEntry
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, paragraph_count, outline_count, updated_at
		FROM documents WHERE path = ?
	`, path).Scan(&e.Path, &e.Title, &e.Checksum, &e.ParagraphCount, &e.OutlineCount, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("catalog %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &e, nil
}

// ListDocuments returns a page of catalog entries ordered by path and the total count.
func (db *DB) ListDocuments(limit, offset int) ([]models.CatalogEntry, int, error) {
	if limit <= 0 {
		limit = 50
	}
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}
	rows, err := db.conn.Query(`
		SELECT path, title, checksum, paragraph_count, outline_count, updated_at
		FROM documents
		ORDER BY path
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out := []models.CatalogEntry{}
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.Path, &e.Title, &e.Checksum, &e.ParagraphCount, &e.OutlineCount, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// AllChecksums returns path → checksum for every catalog entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
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
