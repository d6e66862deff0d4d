package document

import (
	"path"
	"strings"
)

// Title returns the text of the first outline entry, or the file name without
// its extension when the document has no headings.
func (d *Document) Title() string {
	for _, e := range d.Outline {
		if t := strings.TrimSpace(e.Text()); t != "" {
			return t
		}
	}
	base := path.Base(strings.ReplaceAll(d.Path, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
