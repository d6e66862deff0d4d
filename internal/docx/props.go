package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// CorePropsMember holds the package's Dublin Core metadata.
const CorePropsMember = "docProps/core.xml"

// CoreTitle returns dc:title from the package's core properties. It returns an
// empty string when the member or the element is absent. The load path never
// calls it; the library catalog does.
func CoreTitle(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != CorePropsMember {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		raw, err := io.ReadAll(io.LimitReader(rc, 1<<20))
		rc.Close()
		if err != nil {
			return "", err
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(raw); err != nil {
			return "", err
		}
		if el := doc.FindElement("//dc:title"); el != nil {
			return strings.TrimSpace(el.Text()), nil
		}
		return "", nil
	}
	return "", nil
}
