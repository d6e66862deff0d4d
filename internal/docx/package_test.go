package docx

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/docx/docxtest"
)

func TestOpen_ExtractsBothMembers(t *testing.T) {
	data := docxtest.ScenarioDocx(t)
	p := docxtest.Write(t, t.TempDir(), "scenario.docx", data)

	pkg, err := Open(p)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(pkg.Styles) == 0 || len(pkg.Body) == 0 {
		t.Fatalf("empty members: styles=%d body=%d", len(pkg.Styles), len(pkg.Body))
	}
	if pkg.Checksum == "" {
		t.Error("checksum not set")
	}
	if pkg.Path != p {
		t.Errorf("path = %q, want %q", pkg.Path, p)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.docx"))
	var pe *apperr.PackageError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *apperr.PackageError", err)
	}
}

func TestParse_NotAnArchive(t *testing.T) {
	_, err := Parse("junk.docx", []byte("this is not a zip file"))
	var pe *apperr.PackageError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *apperr.PackageError", err)
	}
}

func TestParse_MissingMember(t *testing.T) {
	cases := []struct {
		name    string
		members map[string]string
		missing string
	}{
		{"no styles", map[string]string{BodyMember: docxtest.Body()}, StylesMember},
		{"no body", map[string]string{StylesMember: docxtest.Styles()}, BodyMember},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("x.docx", docxtest.Build(t, tc.members))
			var pe *apperr.PackageError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *apperr.PackageError", err)
			}
			if pe.Member != tc.missing {
				t.Errorf("member = %q, want %q", pe.Member, tc.missing)
			}
		})
	}
}

func TestParse_RejectsTraversalEntries(t *testing.T) {
	data := docxtest.Build(t, map[string]string{
		StylesMember:  docxtest.Styles(),
		BodyMember:    docxtest.Body(),
		"../evil.xml": "x",
	})
	_, err := Parse("evil.docx", data)
	var pe *apperr.PackageError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *apperr.PackageError", err)
	}
}

func TestCoreTitle(t *testing.T) {
	core := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title> Annual Report </dc:title>
</cp:coreProperties>`
	data := docxtest.Build(t, map[string]string{
		StylesMember:    docxtest.Styles(),
		BodyMember:      docxtest.Body(),
		CorePropsMember: core,
	})
	title, err := CoreTitle(data)
	if err != nil {
		t.Fatalf("CoreTitle: %v", err)
	}
	if title != "Annual Report" {
		t.Errorf("title = %q, want %q", title, "Annual Report")
	}

	title, err = CoreTitle(docxtest.ScenarioDocx(t))
	if err != nil || title != "" {
		t.Errorf("without core props: title = %q, err = %v", title, err)
	}
}
