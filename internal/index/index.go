package index

import "github.com/starford/docxreader/internal/models"

// Catalog defines the library catalog operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type Catalog interface {
	UpsertDocument(e models.CatalogEntry, body string) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetDocument(path string) (*models.CatalogEntry, error)
	ListDocuments(limit, offset int) ([]models.CatalogEntry, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
