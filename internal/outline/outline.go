// Package outline locates headings in a document's outline index.
package outline

import "github.com/starford/docxreader/internal/models"

// Nearest returns the outline entry whose paragraph is the closest one at or
// before position. entries must be ordered by strictly increasing Link.
// Documents with fewer than two entries have no navigable outline.
func Nearest(entries []models.OutlineEntry, paragraphCount, position int) (models.OutlineEntry, bool) {
	n := len(entries)
	if n < 2 || position < 0 || paragraphCount <= 0 {
		return models.OutlineEntry{}, false
	}

	probe := max(1, position*n/paragraphCount)
	probe = min(n-2, probe)

	if entries[probe].Link >= position {
		for k := probe; k >= 0; k-- {
			if entries[k].Link <= position {
				return entries[k], true
			}
		}
		return models.OutlineEntry{}, false
	}

	for k := probe; k < n; k++ {
		switch {
		case entries[k].Link == position:
			return entries[k], true
		case entries[k].Link > position:
			return entries[k-1], true
		}
	}
	return entries[n-1], true
}
