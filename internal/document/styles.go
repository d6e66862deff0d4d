package document

import (
	"github.com/starford/docxreader/internal/docx"
	"github.com/starford/docxreader/internal/models"
	"github.com/starford/docxreader/internal/styles"
)

// parseStyles collects the top-level w:style definitions of the styles member
// and resolves them into a table.
func parseStyles(data []byte) (*styles.Table, error) {
	var (
		raw              []models.StyleDefinition
		cur              *models.StyleDefinition
		curDefault       bool
		defaultParagraph string
	)

	err := docx.Walk(docx.StylesMember, data, func(ev docx.Event) error {
		switch ev.Kind {
		case docx.StartElement:
			if ev.Depth == 2 && ev.Is("style") {
				id, _ := ev.Val("styleId")
				typ, _ := ev.Val("type")
				def, _ := ev.Val("default")
				cur = &models.StyleDefinition{ID: id}
				curDefault = typ == "paragraph" && (def == "1" || def == "true")
				return nil
			}
			if cur == nil {
				return nil
			}
			switch {
			case ev.Is("basedOn"):
				cur.BasedOn, _ = ev.Val("val")
			case ev.Is("outlineLvl"):
				n, err := numericVal(docx.StylesMember, ev)
				if err != nil {
					return err
				}
				cur.OutlineLevel = models.Uint32(n)
			default:
				_, err := applyToggle(docx.StylesMember, ev, &cur.Style)
				return err
			}
		case docx.EndElement:
			if ev.Depth == 2 && ev.Is("style") && cur != nil {
				if cur.ID != "" {
					raw = append(raw, *cur)
					if curDefault && defaultParagraph == "" {
						defaultParagraph = cur.ID
					}
				}
				cur = nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return styles.NewTable(raw, defaultParagraph)
}
