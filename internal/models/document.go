// Package models defines the domain types for docxreader.
package models

// Style holds sparse formatting attributes. A nil field means "inherit from the
// next-lower-priority source", never "explicitly off".
type Style struct {
	Bold      *bool   `json:"bold,omitempty"`
	Underline *bool   `json:"underline,omitempty"`
	Highlight *bool   `json:"highlight,omitempty"`
	Size      *uint32 `json:"size,omitempty"`
}

// Equal reports whether every attribute matches, including absence.
func (s Style) Equal(o Style) bool {
	return eqPtr(s.Bold, o.Bold) &&
		eqPtr(s.Underline, o.Underline) &&
		eqPtr(s.Highlight, o.Highlight) &&
		eqPtr(s.Size, o.Size)
}

// Overlay fills the attributes absent from s with those of defaults.
// Attributes already present in s are kept.
func (s Style) Overlay(defaults Style) Style {
	if s.Bold == nil {
		s.Bold = defaults.Bold
	}
	if s.Underline == nil {
		s.Underline = defaults.Underline
	}
	if s.Highlight == nil {
		s.Highlight = defaults.Highlight
	}
	if s.Size == nil {
		s.Size = defaults.Size
	}
	return s
}

// IsZero reports whether no attribute is present.
func (s Style) IsZero() bool {
	return s.Bold == nil && s.Underline == nil && s.Highlight == nil && s.Size == nil
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Bool returns a pointer to a fresh copy of v.
func Bool(v bool) *bool { return &v }

// Uint32 returns a pointer to a fresh copy of v.
func Uint32(v uint32) *uint32 { return &v }

// StyleDefinition is one named entry of a package's style table.
type StyleDefinition struct {
	ID           string  `json:"id"`
	BasedOn      string  `json:"based_on,omitempty"`
	Style        Style   `json:"style"`
	OutlineLevel *uint32 `json:"outline_level,omitempty"`
}

// Run is a contiguous span of text sharing one resolved Style.
type Run struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Paragraph is one entry of the flattened paragraph sequence.
type Paragraph struct {
	Runs         []Run   `json:"runs"`
	Index        int     `json:"index"`
	OutlineLevel *uint32 `json:"outline_level,omitempty"`
}

// Text returns the concatenated text of all runs.
func (p Paragraph) Text() string {
	switch len(p.Runs) {
	case 0:
		return ""
	case 1:
		return p.Runs[0].Text
	}
	n := 0
	for _, r := range p.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range p.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

// Clone returns a deep copy safe to hand out of a locked section.
func (p Paragraph) Clone() Paragraph {
	c := p
	c.Runs = append([]Run(nil), p.Runs...)
	if c.Runs == nil {
		c.Runs = []Run{}
	}
	return c
}

// OutlineEntry is a heading paragraph as seen from the outline sequence.
type OutlineEntry struct {
	Index int    `json:"index"`
	Link  int    `json:"link"`
	Level uint32 `json:"level"`
	Runs  []Run  `json:"runs"`
}

// Text returns the heading text.
func (e OutlineEntry) Text() string {
	return Paragraph{Runs: e.Runs}.Text()
}

// Clone returns a deep copy.
func (e OutlineEntry) Clone() OutlineEntry {
	c := e
	c.Runs = append([]Run(nil), e.Runs...)
	if c.Runs == nil {
		c.Runs = []Run{}
	}
	return c
}
