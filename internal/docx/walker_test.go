package docx

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/docxreader/internal/apperr"
)

func TestWalk_EventsInOrder(t *testing.T) {
	src := `<w:document xmlns:w="` + WordNamespace + `"><w:body><w:p><w:r><w:t>hi</w:t></w:r></w:p></w:body></w:document>`
	var got []string
	err := Walk(BodyMember, []byte(src), func(ev Event) error {
		switch ev.Kind {
		case StartElement:
			got = append(got, "+"+ev.Name.Local)
		case EndElement:
			got = append(got, "-"+ev.Name.Local)
		case Text:
			got = append(got, "#"+string(ev.Text))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := "+document +body +p +r +t #hi -t -r -p -body -document"
	if strings.Join(got, " ") != want {
		t.Errorf("events = %q\nwant     %q", strings.Join(got, " "), want)
	}
}

func TestWalk_DepthAndAttributes(t *testing.T) {
	src := `<w:styles xmlns:w="` + WordNamespace + `"><w:style w:styleId="Title"/></w:styles>`
	var depth int
	var id string
	err := Walk(StylesMember, []byte(src), func(ev Event) error {
		if ev.Kind == StartElement && ev.Is("style") {
			depth = ev.Depth
			id, _ = ev.Val("styleId")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if depth != 2 || id != "Title" {
		t.Errorf("depth = %d id = %q", depth, id)
	}
}

func TestWalk_MalformedMarkup(t *testing.T) {
	cases := map[string]string{
		"unterminated": `<w:document xmlns:w="` + WordNamespace + `"><w:body><w:p>`,
		"mismatched":   `<w:document xmlns:w="` + WordNamespace + `"><w:body></w:p></w:document>`,
		"garbage":      `<<<`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			err := Walk(BodyMember, []byte(src), func(Event) error { return nil })
			var fe *apperr.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *apperr.FormatError", err)
			}
			if fe.Member != BodyMember {
				t.Errorf("member = %q", fe.Member)
			}
		})
	}
}

func TestWalk_VisitorErrorWrapped(t *testing.T) {
	src := `<w:document xmlns:w="` + WordNamespace + `"/>`
	boom := errors.New("boom")
	err := Walk(BodyMember, []byte(src), func(Event) error { return boom })
	var fe *apperr.FormatError
	if !errors.As(err, &fe) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want FormatError wrapping boom", err)
	}
}

func TestIsWord_AcceptsUndeclaredPrefix(t *testing.T) {
	src := `<w:p><w:r/></w:p>`
	var seen int
	err := Walk(BodyMember, []byte(src), func(ev Event) error {
		if ev.Kind == StartElement && (ev.Is("p") || ev.Is("r")) {
			seen++
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if seen != 2 {
		t.Errorf("seen = %d, want 2", seen)
	}
}
