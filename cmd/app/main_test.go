package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docxreader/internal/docx/docxtest"
	"github.com/starford/docxreader/internal/document"
)

func TestPrintSummary(t *testing.T) {
	dir := t.TempDir()
	docxtest.Write(t, dir, "scenario.docx", docxtest.ScenarioDocx(t))
	doc, err := document.Load(filepath.Join(dir, "scenario.docx"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printSummary(&buf, doc, true)
	out := buf.String()
	for _, want := range []string{
		"title:      Section A: cats",
		"paragraphs: 4",
		"outline:    2",
		"Section B: dogs [3]",
		"    2  More about cats",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
