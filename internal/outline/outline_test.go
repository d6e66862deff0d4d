package outline

import (
	"testing"

	"github.com/starford/docxreader/internal/models"
)

func entries(links ...int) []models.OutlineEntry {
	out := make([]models.OutlineEntry, len(links))
	for i, l := range links {
		out[i] = models.OutlineEntry{Index: i, Link: l}
	}
	return out
}

// brute is the linear reference: the last entry with Link <= position.
func brute(es []models.OutlineEntry, position int) (int, bool) {
	found := -1
	for k, e := range es {
		if e.Link <= position {
			found = k
		}
	}
	return found, found >= 0
}

func TestNearest_Scenario(t *testing.T) {
	es := entries(1, 3)
	got, ok := Nearest(es, 4, 2)
	if !ok || got.Link != 1 {
		t.Fatalf("Nearest(2) = %+v, %v; want link 1", got, ok)
	}
	if _, ok := Nearest(es, 4, 0); ok {
		t.Error("Nearest(0) found an entry before the first heading")
	}
	if got, ok := Nearest(es, 4, 3); !ok || got.Link != 3 {
		t.Errorf("Nearest(3) = %+v, %v; want link 3", got, ok)
	}
}

func TestNearest_Degenerate(t *testing.T) {
	cases := []struct {
		name  string
		es    []models.OutlineEntry
		count int
		pos   int
	}{
		{"empty", nil, 10, 3},
		{"single entry", entries(0), 10, 5},
		{"negative position", entries(1, 3), 4, -1},
		{"no paragraphs", entries(1, 3), 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got, ok := Nearest(tc.es, tc.count, tc.pos); ok {
				t.Errorf("got %+v, want none", got)
			}
		})
	}
}

func TestNearest_MatchesLinearScan(t *testing.T) {
	layouts := [][]int{
		{1, 3},
		{0, 1, 2, 3, 4},
		{5, 6, 40, 41, 42, 99},
		{0, 50, 51, 52, 53, 54, 55, 56},
		{10, 20, 30, 40, 50, 60, 70, 80, 90},
	}
	for _, links := range layouts {
		es := entries(links...)
		count := links[len(links)-1] + 10
		for pos := 0; pos < count+5; pos++ {
			want, wantOK := brute(es, pos)
			got, ok := Nearest(es, count, pos)
			if ok != wantOK || (ok && got.Index != want) {
				t.Errorf("links %v pos %d: got (%d, %v), want (%d, %v)", links, pos, got.Index, ok, want, wantOK)
			}
		}
	}
}
