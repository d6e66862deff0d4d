// Package search implements windowed substring search over a paragraph
// sequence with result caching across refined and relaxed queries.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/starford/docxreader/internal/models"
)

// Session holds the cached results of the last query over one document.
// It is not safe for concurrent use; callers serialise access.
type Session struct {
	paragraphs []models.Paragraph
	texts      []string
	folded     []string

	results   []models.SearchResult
	last      *models.SearchQuery
	watermark int
	scanned   int
}

// NewSession returns a session over paragraphs. texts[i] must be the text of
// paragraphs[i]; when nil it is derived from the paragraphs.
func NewSession(paragraphs []models.Paragraph, texts []string) *Session {
	s := &Session{}
	s.Reset(paragraphs, texts)
	return s
}

// Reset replaces the corpus and drops every cached result.
func (s *Session) Reset(paragraphs []models.Paragraph, texts []string) {
	if texts == nil {
		texts = make([]string, len(paragraphs))
		for i, p := range paragraphs {
			texts[i] = p.Text()
		}
	}
	folder := cases.Lower(language.Und)
	folded := make([]string, len(texts))
	for i, t := range texts {
		folded[i] = folder.String(t)
	}
	s.paragraphs = paragraphs
	s.texts = texts
	s.folded = folded
	s.scanned = 0
	s.Clear()
}

// Clear drops cached results and the last query. The corpus is kept.
func (s *Session) Clear() {
	s.results = nil
	s.last = nil
	s.watermark = 0
}

// Scanned returns the number of paragraphs examined since the corpus was set.
func (s *Session) Scanned() int {
	return s.scanned
}

// Search returns results [i, j) of q, scanning only as far as needed to fill
// the window. An empty query text clears the session.
func (s *Session) Search(q models.SearchQuery, i, j int) []models.SearchResult {
	if q.Text == "" {
		s.Clear()
		return []models.SearchResult{}
	}

	switch {
	case s.last != nil && *s.last == q:
	case s.last != nil && isRefinement(*s.last, q):
		s.refine(q)
	default:
		s.results = nil
		s.watermark = 0
	}
	s.last = &q

	needle := q.Text
	if !q.MatchCase {
		needle = fold(needle)
	}
	for len(s.results) < j && s.watermark < len(s.texts) {
		pos := s.watermark
		s.watermark++
		s.scanned++
		if q.OnlyOutline && s.paragraphs[pos].OutlineLevel == nil {
			continue
		}
		n := strings.Count(s.haystack(pos, q.MatchCase), needle)
		for k := 0; k < n; k++ {
			s.results = append(s.results, models.SearchResult{
				Link:       pos,
				Index:      len(s.results),
				Paragraph:  s.paragraphs[pos],
				QueryIndex: k,
			})
		}
	}

	return window(s.results, i, j)
}

// isRefinement reports whether every match of next is guaranteed to be a
// match of prev, so prev's results can be filtered instead of recomputed.
func isRefinement(prev, next models.SearchQuery) bool {
	if prev.MatchCase && !next.MatchCase {
		return false
	}
	if prev.OnlyOutline && !next.OnlyOutline {
		return false
	}
	if prev.MatchCase {
		return strings.Contains(next.Text, prev.Text)
	}
	return strings.Contains(fold(next.Text), fold(prev.Text))
}

func (s *Session) refine(q models.SearchQuery) {
	needle := q.Text
	if !q.MatchCase {
		needle = fold(needle)
	}
	kept := s.results[:0]
	for _, r := range s.results {
		if q.OnlyOutline && r.Paragraph.OutlineLevel == nil {
			continue
		}
		if strings.Count(s.haystack(r.Link, q.MatchCase), needle) <= r.QueryIndex {
			continue
		}
		r.Index = len(kept)
		kept = append(kept, r)
	}
	s.results = kept
}

func (s *Session) haystack(pos int, matchCase bool) string {
	if matchCase {
		return s.texts[pos]
	}
	return s.folded[pos]
}

func fold(v string) string {
	return cases.Lower(language.Und).String(v)
}

func window(rs []models.SearchResult, i, j int) []models.SearchResult {
	if i < 0 {
		i = 0
	}
	if j > len(rs) {
		j = len(rs)
	}
	if i >= j {
		return []models.SearchResult{}
	}
	out := make([]models.SearchResult, j-i)
	for k, r := range rs[i:j] {
		r.Paragraph = r.Paragraph.Clone()
		out[k] = r
	}
	return out
}
