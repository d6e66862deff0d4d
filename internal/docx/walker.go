package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/starford/docxreader/internal/apperr"
)

// Namespaces accepted for the "w:" vocabulary. An undeclared "w" prefix is
// reported by encoding/xml as the literal prefix and is accepted too.
const (
	WordNamespace       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	StrictWordNamespace = "http://purl.oclc.org/ooxml/wordprocessingml/main"
)

// EventKind classifies walker events.
type EventKind int

const (
	StartElement EventKind = iota
	EndElement
	Text
)

// Event is one step of the walk. Text is only valid during the callback.
type Event struct {
	Kind  EventKind
	Name  xml.Name
	Attr  []xml.Attr
	Text  []byte
	Depth int
}

// Is reports whether the event's element is the given "w:" element.
func (e Event) Is(local string) bool {
	return IsWord(e.Name, local)
}

// Val returns the "w:"-qualified attribute with the given local name.
func (e Event) Val(local string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == local && (a.Name.Space == "" || isWordSpace(a.Name.Space)) {
			return a.Value, true
		}
	}
	return "", false
}

// IsWord reports whether n is the "w:" element called local.
func IsWord(n xml.Name, local string) bool {
	return n.Local == local && isWordSpace(n.Space)
}

func isWordSpace(space string) bool {
	return space == WordNamespace || space == StrictWordNamespace || space == "w"
}

// VisitFunc receives walker events in document order.
type VisitFunc func(Event) error

// Walk streams the member through visit. The tag-path stack is only used to
// pair end tags with their start tags. Decoder failures, mismatched or
// unterminated elements and visitor errors become *apperr.FormatError.
func Walk(member string, data []byte, visit VisitFunc) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var path []xml.Name
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(path) > 0 {
				return &apperr.FormatError{
					Member: member,
					Offset: dec.InputOffset(),
					Msg:    fmt.Sprintf("unterminated element <%s>", path[len(path)-1].Local),
				}
			}
			return nil
		}
		if err != nil {
			return &apperr.FormatError{Member: member, Offset: dec.InputOffset(), Err: err}
		}

		var ev Event
		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name)
			ev = Event{Kind: StartElement, Name: t.Name, Attr: t.Attr, Depth: len(path)}
		case xml.EndElement:
			if len(path) == 0 || path[len(path)-1] != t.Name {
				return &apperr.FormatError{
					Member: member,
					Offset: dec.InputOffset(),
					Msg:    fmt.Sprintf("unexpected end element </%s>", t.Name.Local),
				}
			}
			ev = Event{Kind: EndElement, Name: t.Name, Depth: len(path)}
			path = path[:len(path)-1]
		case xml.CharData:
			ev = Event{Kind: Text, Text: t, Depth: len(path)}
		default:
			continue
		}

		if err := visit(ev); err != nil {
			var fe *apperr.FormatError
			if errors.As(err, &fe) {
				if fe.Offset < 0 {
					fe.Offset = dec.InputOffset()
				}
				return fe
			}
			return &apperr.FormatError{Member: member, Offset: dec.InputOffset(), Err: err}
		}
	}
}
