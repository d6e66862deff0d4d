// Package styles resolves named paragraph and character styles through their
// basedOn inheritance chains.
package styles

import (
	"strings"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/models"
)

// Member is the package member style definitions are read from.
const Member = "word/styles.xml"

// NormalStyle is the style every paragraph starts from.
const NormalStyle = "Normal"

// Table maps style ids to fully resolved definitions. It is immutable once
// built and safe for concurrent reads.
type Table struct {
	defs             map[string]models.StyleDefinition
	defaultParagraph string
}

// NewTable resolves the basedOn chains of raw and returns the resulting table.
// Definitions may reference parents defined later in raw. A basedOn naming an
// unknown style is ignored; a cycle is a *apperr.FormatError.
func NewTable(raw []models.StyleDefinition, defaultParagraph string) (*Table, error) {
	pending := make(map[string]models.StyleDefinition, len(raw))
	order := make([]string, 0, len(raw))
	for _, d := range raw {
		if _, dup := pending[d.ID]; !dup {
			order = append(order, d.ID)
		}
		pending[d.ID] = d
	}

	r := resolver{
		raw:   pending,
		done:  make(map[string]models.StyleDefinition, len(pending)),
		state: make(map[string]uint8, len(pending)),
	}
	for _, id := range order {
		if _, err := r.resolve(id); err != nil {
			return nil, err
		}
	}
	return &Table{defs: r.done, defaultParagraph: defaultParagraph}, nil
}

const (
	unvisited uint8 = iota
	visiting
	resolved
)

type resolver struct {
	raw   map[string]models.StyleDefinition
	done  map[string]models.StyleDefinition
	state map[string]uint8
	chain []string
}

func (r *resolver) resolve(id string) (models.StyleDefinition, error) {
	switch r.state[id] {
	case resolved:
		return r.done[id], nil
	case visiting:
		return models.StyleDefinition{}, &apperr.FormatError{
			Member: Member,
			Offset: -1,
			Msg:    "cyclic basedOn chain: " + strings.Join(append(r.chain, id), " -> "),
		}
	}

	def := r.raw[id]
	r.state[id] = visiting
	r.chain = append(r.chain, id)

	if parentID := def.BasedOn; parentID != "" {
		if _, known := r.raw[parentID]; known {
			parent, err := r.resolve(parentID)
			if err != nil {
				return models.StyleDefinition{}, err
			}
			def.Style = def.Style.Overlay(parent.Style)
			if def.OutlineLevel == nil {
				def.OutlineLevel = parent.OutlineLevel
			}
		}
	}

	r.chain = r.chain[:len(r.chain)-1]
	r.state[id] = resolved
	r.done[id] = def
	return def, nil
}

// Resolve overlays the named style onto base: attributes present in base win,
// absent ones are taken from the style. Unknown names return base unchanged.
func (t *Table) Resolve(name string, base models.Style) models.Style {
	if t == nil {
		return base
	}
	def, ok := t.defs[name]
	if !ok {
		return base
	}
	return base.Overlay(def.Style)
}

// Lookup returns the resolved definition for id.
func (t *Table) Lookup(id string) (models.StyleDefinition, bool) {
	if t == nil {
		return models.StyleDefinition{}, false
	}
	def, ok := t.defs[id]
	return def, ok
}

// OutlineLevel returns the outline level carried by the style, if any.
func (t *Table) OutlineLevel(id string) *uint32 {
	def, ok := t.Lookup(id)
	if !ok {
		return nil
	}
	return def.OutlineLevel
}

// ParagraphBase returns the style every paragraph starts from: "Normal" when
// the table defines it, otherwise the package's default paragraph style.
func (t *Table) ParagraphBase() models.Style {
	if t == nil {
		return models.Style{}
	}
	if _, ok := t.defs[NormalStyle]; ok {
		return t.Resolve(NormalStyle, models.Style{})
	}
	return t.Resolve(t.defaultParagraph, models.Style{})
}

// DefaultParagraphStyle returns the id flagged as the default paragraph style.
func (t *Table) DefaultParagraphStyle() string {
	if t == nil {
		return ""
	}
	return t.defaultParagraph
}

// Len returns the number of definitions.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.defs)
}
