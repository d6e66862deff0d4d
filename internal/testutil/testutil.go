// Package testutil provides shared test helpers for setting up libraries and catalogs.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/docxreader/internal/docx/docxtest"
	"github.com/starford/docxreader/internal/index"
	"github.com/starford/docxreader/internal/storage"
)

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "docxreader-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory with a storage.Provider.
func TestLibrary(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// ScenarioLibrary creates a library holding the four-paragraph scenario
// document as "scenario.docx".
func ScenarioLibrary(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir, store := TestLibrary(t)
	docxtest.Write(t, dir, "scenario.docx", docxtest.ScenarioDocx(t))
	return dir, store
}
