// Package storage gives access to the library directory of .docx packages.
package storage

import "github.com/starford/docxreader/internal/models"

// Ext is the extension of every file the library exposes.
const Ext = ".docx"

// Provider is the interface for library file operations. Paths are relative
// to the library root and use forward slashes.
type Provider interface {
	// List returns metadata for every .docx file under dir, in natural order.
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Rel converts an absolute file-system path under the root to a library path.
	Rel(abs string) (string, error)
	// Root returns the absolute library directory.
	Root() string
}
