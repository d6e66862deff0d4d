package docservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/document"
	"github.com/starford/docxreader/internal/docx"
	"github.com/starford/docxreader/internal/index"
	"github.com/starford/docxreader/internal/models"
	"github.com/starford/docxreader/internal/storage"
)

// ErrNotDocx is returned when imported bytes are not a word-processing package.
var ErrNotDocx = errors.New("content is not a .docx package")

// Library coordinates library storage and catalog operations.
type Library struct {
	store storage.Provider
	db    index.Catalog
}

// NewLibrary creates a new library service.
func NewLibrary(store storage.Provider, db index.Catalog) *Library {
	return &Library{store: store, db: db}
}

// Store returns the underlying storage provider.
func (l *Library) Store() storage.Provider { return l.store }

// List returns every .docx file of the library in natural order.
func (l *Library) List(_ context.Context, dir string) ([]models.DocumentMetadata, error) {
	return l.store.List(dir)
}

// Catalog returns a page of catalog entries and the total count.
func (l *Library) Catalog(_ context.Context, limit, offset int) ([]models.CatalogEntry, int, error) {
	return l.db.ListDocuments(limit, offset)
}

// Entry returns the catalog entry for path.
func (l *Library) Entry(_ context.Context, path string) (*models.CatalogEntry, error) {
	return l.db.GetDocument(path)
}

// Search delegates full-text search across documents to the catalog.
func (l *Library) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return l.db.Search(query, limit)
}

// Import validates data as a .docx package, stores it under name and indexes
// it. An empty name gets a generated one. Existing files are only replaced
// when overwrite is set.
func (l *Library) Import(_ context.Context, name string, data []byte, overwrite bool) (*models.CatalogEntry, error) {
	name, err := importName(name)
	if err != nil {
		return nil, err
	}

	kind, _ := filetype.Match(data)
	if kind.Extension != "docx" && kind.Extension != "zip" {
		return nil, fmt.Errorf("%s: %w (detected %q)", name, ErrNotDocx, kind.MIME.Value)
	}
	pkg, err := docx.Parse(name, data)
	if err != nil {
		return nil, err
	}
	if _, err := document.Parse(pkg); err != nil {
		return nil, err
	}

	if !overwrite {
		if _, err := l.store.Read(name); err == nil {
			return nil, fmt.Errorf("%s: %w", name, apperr.ErrAlreadyExists)
		}
	}
	if err := l.store.Write(name, data); err != nil {
		return nil, err
	}
	e, err := index.IndexFile(l.db, name, data)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes a file from the library and the catalog.
func (l *Library) Delete(_ context.Context, path string) error {
	if err := l.store.Delete(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return err
	}
	return l.db.DeleteDocument(path)
}

// Read implements Source so sessions resolve load paths against the library.
func (l *Library) Read(path string) ([]byte, error) {
	return l.store.Read(path)
}

// importName normalises a client-supplied library path.
func importName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return "upload-" + uuid.NewString() + storage.Ext, nil
	}
	cleaned := path.Clean(name)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", &apperr.QueryError{Field: "path", Msg: "must be relative to the library"}
	}
	if !storage.IsDocument(cleaned) {
		return "", &apperr.QueryError{Field: "path", Msg: "must name a .docx file"}
	}
	return cleaned, nil
}
