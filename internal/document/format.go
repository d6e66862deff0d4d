package document

import (
	"fmt"
	"strconv"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/docx"
	"github.com/starford/docxreader/internal/models"
)

// applyToggle applies a run formatting element to s. It reports whether ev
// was one of the formatting elements.
func applyToggle(member string, ev docx.Event, s *models.Style) (bool, error) {
	switch {
	case ev.Is("b"):
		v, ok := ev.Val("val")
		s.Bold = models.Bool(!ok || !isOff(v))
	case ev.Is("u"):
		v, ok := ev.Val("val")
		s.Underline = models.Bool(!ok || v != "none")
	case ev.Is("highlight"):
		v, ok := ev.Val("val")
		s.Highlight = models.Bool(!ok || v != "none")
	case ev.Is("sz"):
		n, err := numericVal(member, ev)
		if err != nil {
			return true, err
		}
		s.Size = models.Uint32(n)
	default:
		return false, nil
	}
	return true, nil
}

func isOff(v string) bool {
	switch v {
	case "0", "false", "off":
		return true
	}
	return false
}

// numericVal parses the element's w:val as a non-negative integer.
func numericVal(member string, ev docx.Event) (uint32, error) {
	v, ok := ev.Val("val")
	if !ok {
		return 0, &apperr.FormatError{
			Member: member,
			Offset: -1,
			Msg:    fmt.Sprintf("<w:%s> without w:val", ev.Name.Local),
		}
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, &apperr.FormatError{
			Member: member,
			Offset: -1,
			Msg:    fmt.Sprintf("<w:%s> has non-numeric w:val %q", ev.Name.Local, v),
		}
	}
	return uint32(n), nil
}
