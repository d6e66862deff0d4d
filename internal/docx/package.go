// Package docx opens word-processing packages and streams their XML members.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/checksum"
)

// Members read from every package.
const (
	StylesMember = "word/styles.xml"
	BodyMember   = "word/document.xml"
)

// maxMemberSize bounds the decompressed size of a single member.
const maxMemberSize = 256 << 20

// Package holds the two member streams a document model is built from.
type Package struct {
	Path     string
	Checksum string
	Styles   []byte
	Body     []byte
}

// Open reads the package at path.
func Open(p string) (*Package, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, &apperr.PackageError{Path: p, Err: err}
	}
	return Parse(p, data)
}

// Parse extracts the style and body members from in-memory package bytes.
// name is only used for error reporting.
func Parse(name string, data []byte) (*Package, error) {
	pkg, err := Read(name, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	pkg.Checksum = checksum.Sum(data)
	return pkg, nil
}

// Read extracts the style and body members from r. Checksum is left empty.
func Read(name string, r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &apperr.PackageError{Path: name, Err: fmt.Errorf("not a valid archive: %w", err)}
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if !isSafePath(f.Name) {
			return nil, &apperr.PackageError{
				Path: name,
				Err:  fmt.Errorf("zip entry %q: unsafe path", f.Name),
			}
		}
		files[f.Name] = f
	}

	pkg := &Package{Path: name}
	if pkg.Styles, err = readMember(name, files, StylesMember); err != nil {
		return nil, err
	}
	if pkg.Body, err = readMember(name, files, BodyMember); err != nil {
		return nil, err
	}
	return pkg, nil
}

func readMember(name string, files map[string]*zip.File, member string) ([]byte, error) {
	f, ok := files[member]
	if !ok {
		return nil, &apperr.PackageError{Path: name, Member: member}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &apperr.PackageError{Path: name, Member: member, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxMemberSize+1))
	if err != nil {
		return nil, &apperr.PackageError{Path: name, Member: member, Err: err}
	}
	if len(data) > maxMemberSize {
		return nil, &apperr.PackageError{Path: name, Member: member, Err: errors.New("member too large")}
	}
	return data, nil
}

// isSafePath rejects absolute entries and entries with ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
