package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/starford/docxreader/internal/document"
	"github.com/starford/docxreader/internal/docx"
	"github.com/starford/docxreader/internal/models"
	"github.com/starford/docxreader/internal/storage"
)

// syncWorkers bounds the number of packages parsed concurrently by Sync.
const syncWorkers = 4

// Sync walks the library and brings the catalog up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the catalog
//
// Files that fail to parse are skipped; their errors are combined in the
// returned error. A cancelled ctx stops the walk early.
func Sync(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		entries []indexed
		failed  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncWorkers)

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		m := m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := store.Read(m.Path)
			if err == nil {
				var e indexed
				e, err = parseEntry(m.Path, data, m.UpdatedAt)
				if err == nil {
					mu.Lock()
					entries = append(entries, e)
					mu.Unlock()
					return nil
				}
			}
			logger.Warn("sync: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			mu.Lock()
			failed = multierr.Append(failed, fmt.Errorf("%s: %w", m.Path, err))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, e := range entries {
		if err := db.UpsertDocument(e.entry, e.body); err != nil {
			failed = multierr.Append(failed, err)
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", e.entry.Path))
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteDocument(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			failed = multierr.Append(failed, err)
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	logger.Info("sync: done",
		slog.Int("files", len(metas)),
		slog.Int("indexed", len(entries)),
		slog.Int("failed", len(multierr.Errors(failed))),
	)
	return failed
}

type indexed struct {
	entry models.CatalogEntry
	body  string
}

// parseEntry builds the catalog row for one package.
func parseEntry(path string, data []byte, modTime time.Time) (indexed, error) {
	pkg, err := docx.Parse(path, data)
	if err != nil {
		return indexed{}, err
	}
	doc, err := document.Parse(pkg)
	if err != nil {
		return indexed{}, err
	}
	title, err := docx.CoreTitle(data)
	if err != nil || title == "" {
		title = doc.Title()
	}
	if modTime.IsZero() {
		modTime = time.Now().UTC()
	}
	return indexed{
		entry: models.CatalogEntry{
			Path:           path,
			Title:          title,
			Checksum:       pkg.Checksum,
			ParagraphCount: len(doc.Paragraphs),
			OutlineCount:   len(doc.Outline),
			UpdatedAt:      modTime,
		},
		body: strings.Join(doc.Texts, "\n"),
	}, nil
}

// IndexFile parses data and upserts it into the catalog.
func IndexFile(db Catalog, path string, data []byte) (models.CatalogEntry, error) {
	e, err := parseEntry(path, data, time.Time{})
	if err != nil {
		return models.CatalogEntry{}, err
	}
	if err := db.UpsertDocument(e.entry, e.body); err != nil {
		return models.CatalogEntry{}, err
	}
	return e.entry, nil
}
