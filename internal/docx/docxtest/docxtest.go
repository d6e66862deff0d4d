// Package docxtest builds small in-memory .docx packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const wns = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// Styles wraps style elements in a w:styles root.
func Styles(styles ...string) string {
	return header + `<w:styles ` + wns + `>` + strings.Join(styles, "") + `</w:styles>`
}

// Style builds one w:style element. props is inserted verbatim after basedOn.
func Style(id, basedOn, props string) string {
	var b strings.Builder
	b.WriteString(`<w:style w:type="paragraph" w:styleId="` + id + `">`)
	b.WriteString(`<w:name w:val="` + id + `"/>`)
	if basedOn != "" {
		b.WriteString(`<w:basedOn w:val="` + basedOn + `"/>`)
	}
	b.WriteString(props)
	b.WriteString(`</w:style>`)
	return b.String()
}

// Body wraps paragraphs in w:document/w:body.
func Body(paras ...string) string {
	return header + `<w:document ` + wns + `><w:body>` + strings.Join(paras, "") + `</w:body></w:document>`
}

// P builds a paragraph with optional pPr content.
func P(pPr string, runs ...string) string {
	var b strings.Builder
	b.WriteString(`<w:p>`)
	if pPr != "" {
		b.WriteString(`<w:pPr>` + pPr + `</w:pPr>`)
	}
	b.WriteString(strings.Join(runs, ""))
	b.WriteString(`</w:p>`)
	return b.String()
}

// R builds a run with optional rPr content and a single text node.
func R(rPr, text string) string {
	var b strings.Builder
	b.WriteString(`<w:r>`)
	if rPr != "" {
		b.WriteString(`<w:rPr>` + rPr + `</w:rPr>`)
	}
	b.WriteString(`<w:t xml:space="preserve">` + text + `</w:t>`)
	b.WriteString(`</w:r>`)
	return b.String()
}

// Heading builds a paragraph using the given paragraph style and plain text.
func Heading(styleID, text string) string {
	return P(`<w:pStyle w:val="`+styleID+`"/>`, R("", text))
}

// Plain builds an unstyled single-run paragraph.
func Plain(text string) string {
	return P("", R("", text))
}

// DefaultStyles returns a style table with Normal and two heading levels.
func DefaultStyles() string {
	return Styles(
		Style("Normal", "", `<w:rPr><w:sz w:val="22"/></w:rPr>`),
		Style("Heading1", "Normal", `<w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/></w:rPr>`),
		Style("Heading2", "Heading1", `<w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:u w:val="single"/></w:rPr>`),
	)
}

// Build zips the members into a package. Keys are member names.
func Build(t testing.TB, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// Docx builds a package from a styles and a body stream.
func Docx(t testing.TB, styles, body string) []byte {
	t.Helper()
	return Build(t, map[string]string{
		"word/styles.xml":   styles,
		"word/document.xml": body,
	})
}

// Write stores data as name under dir and returns the full path.
func Write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// ScenarioBody is the four-paragraph document used across packages:
// paragraphs 1 and 3 are level-0 headings.
func ScenarioBody() string {
	return Body(
		Plain("Intro"),
		Heading("Heading1", "Section A: cats"),
		Plain("More about cats"),
		Heading("Heading1", "Section B: dogs"),
	)
}

// ScenarioDocx returns the scenario document as package bytes.
func ScenarioDocx(t testing.TB) []byte {
	t.Helper()
	return Docx(t, DefaultStyles(), ScenarioBody())
}
