package document

import (
	"strings"

	"github.com/starford/docxreader/internal/docx"
	"github.com/starford/docxreader/internal/models"
	"github.com/starford/docxreader/internal/styles"
)

type slot uint8

const (
	slotNone slot = iota
	slotParagraph
	slotRun
)

// bodyBuilder turns body member events into paragraphs and outline entries.
type bodyBuilder struct {
	table *styles.Table
	base  models.Style

	paragraphs []models.Paragraph
	outline    []models.OutlineEntry

	active         slot
	paragraphStyle models.Style
	runStyle       models.Style
	level          *uint32
	runs           []models.Run
	text           strings.Builder
	inText         bool

	// skipDepth is the depth of the w:txbxContent being skipped, or 0.
	skipDepth int
}

func newBodyBuilder(table *styles.Table) *bodyBuilder {
	return &bodyBuilder{table: table, base: table.ParagraphBase()}
}

func (b *bodyBuilder) visit(ev docx.Event) error {
	if b.skipDepth > 0 {
		if ev.Kind == docx.EndElement && ev.Depth == b.skipDepth && ev.Is("txbxContent") {
			b.skipDepth = 0
		}
		return nil
	}

	switch ev.Kind {
	case docx.StartElement:
		return b.start(ev)
	case docx.EndElement:
		b.end(ev)
	case docx.Text:
		if b.inText && b.active == slotRun {
			b.text.Write(ev.Text)
		}
	}
	return nil
}

func (b *bodyBuilder) start(ev docx.Event) error {
	switch {
	case ev.Is("txbxContent"):
		b.skipDepth = ev.Depth
	case ev.Is("p"):
		b.resetParagraph()
		b.active = slotParagraph
		b.paragraphStyle = b.base
	case ev.Is("r"):
		if b.active == slotNone {
			return nil
		}
		b.runStyle = b.paragraphStyle
		b.text.Reset()
		b.active = slotRun
	case ev.Is("t"):
		b.inText = true
	case ev.Is("pStyle"):
		id, _ := ev.Val("val")
		if s := b.slot(); s != nil {
			*s = b.table.Resolve(id, *s)
		}
		if b.level == nil && b.active != slotNone {
			b.level = b.table.OutlineLevel(id)
		}
	case ev.Is("rStyle"):
		id, _ := ev.Val("val")
		if s := b.slot(); s != nil {
			*s = b.table.Resolve(id, *s)
		}
	case ev.Is("outlineLvl"):
		n, err := numericVal(docx.BodyMember, ev)
		if err != nil {
			return err
		}
		if b.active != slotNone {
			b.level = models.Uint32(n)
		}
	default:
		if s := b.slot(); s != nil {
			_, err := applyToggle(docx.BodyMember, ev, s)
			return err
		}
		var scratch models.Style
		_, err := applyToggle(docx.BodyMember, ev, &scratch)
		return err
	}
	return nil
}

func (b *bodyBuilder) end(ev docx.Event) {
	switch {
	case ev.Is("t"):
		b.inText = false
	case ev.Is("r"):
		if b.active != slotRun {
			return
		}
		b.appendRun(stripControl(b.text.String()), b.runStyle)
		b.text.Reset()
		b.runStyle = models.Style{}
		b.active = slotParagraph
	case ev.Is("p"):
		if b.active == slotNone {
			return
		}
		b.finishParagraph()
	}
}

func (b *bodyBuilder) slot() *models.Style {
	switch b.active {
	case slotParagraph:
		return &b.paragraphStyle
	case slotRun:
		return &b.runStyle
	}
	return nil
}

func (b *bodyBuilder) appendRun(text string, style models.Style) {
	if text == "" {
		return
	}
	if n := len(b.runs); n > 0 && b.runs[n-1].Style.Equal(style) {
		b.runs[n-1].Text += text
		return
	}
	b.runs = append(b.runs, models.Run{Text: text, Style: style})
}

func (b *bodyBuilder) finishParagraph() {
	runs := b.runs
	if runs == nil {
		runs = []models.Run{}
	}
	pos := len(b.paragraphs)
	b.paragraphs = append(b.paragraphs, models.Paragraph{
		Runs:         runs,
		Index:        pos,
		OutlineLevel: b.level,
	})
	if b.level != nil {
		b.outline = append(b.outline, models.OutlineEntry{
			Index: len(b.outline),
			Link:  pos,
			Level: *b.level,
			Runs:  append([]models.Run(nil), runs...),
		})
	}
	b.resetParagraph()
}

func (b *bodyBuilder) resetParagraph() {
	b.active = slotNone
	b.paragraphStyle = models.Style{}
	b.runStyle = models.Style{}
	b.level = nil
	b.runs = nil
	b.text.Reset()
	b.inText = false
}

var controlStripper = strings.NewReplacer("\n", "", "\r", "", "\t", "")

func stripControl(s string) string {
	if !strings.ContainsAny(s, "\n\r\t") {
		return s
	}
	return controlStripper.Replace(s)
}
