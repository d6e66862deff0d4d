// Package document builds the flattened paragraph model and its outline index
// from a word-processing package.
package document

import (
	"github.com/starford/docxreader/internal/docx"
	"github.com/starford/docxreader/internal/models"
	"github.com/starford/docxreader/internal/styles"
)

// Document is the result of one ingestion. It is never mutated after Parse
// returns.
type Document struct {
	Path       string
	Checksum   string
	Styles     *styles.Table
	Paragraphs []models.Paragraph
	Outline    []models.OutlineEntry
	// Texts holds the concatenated run text of each paragraph, by position.
	Texts []string
}

// Load reads and parses the package at path.
func Load(path string) (*Document, error) {
	pkg, err := docx.Open(path)
	if err != nil {
		return nil, err
	}
	return Parse(pkg)
}

// Parse builds the model from an opened package. Any error leaves no partial
// result.
func Parse(pkg *docx.Package) (*Document, error) {
	table, err := parseStyles(pkg.Styles)
	if err != nil {
		return nil, err
	}

	b := newBodyBuilder(table)
	if err := docx.Walk(docx.BodyMember, pkg.Body, b.visit); err != nil {
		return nil, err
	}

	texts := make([]string, len(b.paragraphs))
	for i, p := range b.paragraphs {
		texts[i] = p.Text()
	}
	outline := b.outline
	if outline == nil {
		outline = []models.OutlineEntry{}
	}
	paragraphs := b.paragraphs
	if paragraphs == nil {
		paragraphs = []models.Paragraph{}
	}
	return &Document{
		Path:       pkg.Path,
		Checksum:   pkg.Checksum,
		Styles:     table,
		Paragraphs: paragraphs,
		Outline:    outline,
		Texts:      texts,
	}, nil
}
