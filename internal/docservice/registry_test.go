package docservice

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/docx/docxtest"
	"github.com/starford/docxreader/internal/models"
)

type memSource map[string][]byte

func (m memSource) Read(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func scenarioSession(t *testing.T) (*Registry, *Session) {
	t.Helper()
	reg := NewRegistry(memSource{"scenario.docx": docxtest.ScenarioDocx(t)}, nil)
	s := reg.Create()
	if err := s.Load("scenario.docx"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg, s
}

func TestSession_ScenarioCommands(t *testing.T) {
	_, s := scenarioSession(t)

	info, ok := s.Info()
	if !ok || info.ParagraphCount != 4 || info.OutlineCount != 2 {
		t.Fatalf("info = %+v, %v", info, ok)
	}
	if info.Title != "Section A: cats" {
		t.Errorf("title = %q", info.Title)
	}

	if ps := s.Paragraphs(1, 3); len(ps) != 2 || ps[0].Text() != "Section A: cats" {
		t.Errorf("Paragraphs(1,3) = %+v", ps)
	}
	if es := s.OutlineEntries(0, 10); len(es) != 2 || es[1].Link != 3 {
		t.Errorf("OutlineEntries = %+v", es)
	}
	if e, ok := s.NearestOutlineEntry(2); !ok || e.Link != 1 {
		t.Errorf("NearestOutlineEntry(2) = %+v, %v", e, ok)
	}

	rs := s.Search(models.SearchQuery{Text: "cats"}, 0, 10)
	if len(rs) != 2 || rs[0].Link != 1 || rs[1].Link != 2 {
		t.Errorf("Search = %+v", rs)
	}
	rs = s.Search(models.SearchQuery{Text: "cats", OnlyOutline: true}, 0, 10)
	if len(rs) != 1 || rs[0].Link != 1 {
		t.Errorf("outline-only Search = %+v", rs)
	}
}

func TestSession_WindowsClip(t *testing.T) {
	_, s := scenarioSession(t)
	cases := []struct{ i, j, want int }{
		{0, 0, 0},
		{3, 1, 0},
		{-2, 2, 2},
		{2, 99, 2},
		{10, 20, 0},
	}
	for _, tc := range cases {
		got := s.Paragraphs(tc.i, tc.j)
		if got == nil || len(got) != tc.want {
			t.Errorf("Paragraphs(%d,%d) = %d items, want %d", tc.i, tc.j, len(got), tc.want)
		}
	}
}

func TestSession_WindowReturnsCopies(t *testing.T) {
	_, s := scenarioSession(t)
	ps := s.Paragraphs(0, 1)
	ps[0].Runs[0].Text = "changed"
	if got := s.Paragraphs(0, 1)[0].Text(); got != "Intro" {
		t.Errorf("model mutated through window: %q", got)
	}
}

func TestSession_LoadFailureLeavesEmpty(t *testing.T) {
	src := memSource{
		"good.docx": docxtest.ScenarioDocx(t),
		"bad.docx":  []byte("not a zip"),
	}
	s := NewRegistry(src, nil).Create()
	if err := s.Load("good.docx"); err != nil {
		t.Fatal(err)
	}
	s.Search(models.SearchQuery{Text: "cats"}, 0, 10)

	err := s.Load("bad.docx")
	if !apperr.IsLoadError(err) {
		t.Fatalf("err = %v, want a load error", err)
	}
	if _, ok := s.Info(); ok {
		t.Error("session still reports a document")
	}
	if len(s.Paragraphs(0, 10)) != 0 || len(s.OutlineEntries(0, 10)) != 0 {
		t.Error("model not cleared")
	}
	if len(s.Search(models.SearchQuery{Text: "cats"}, 0, 10)) != 0 {
		t.Error("search corpus not cleared")
	}

	if err := s.Load("missing.docx"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}
}

func TestSession_UnloadAndReload(t *testing.T) {
	var events []string
	var mu sync.Mutex
	reg := NewRegistry(memSource{"a.docx": docxtest.ScenarioDocx(t)}, nil)
	reg.OnEvent(func(kind, _, _ string) {
		mu.Lock()
		events = append(events, kind)
		mu.Unlock()
	})
	s := reg.Create()

	if err := s.Reload(); !errors.Is(err, apperr.ErrNoDocument) {
		t.Errorf("Reload on empty session = %v", err)
	}
	if err := s.Load("a.docx"); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	s.ClearSearch()
	s.Unload()
	if _, ok := s.Info(); ok {
		t.Error("document still loaded after Unload")
	}

	want := []string{EventLoaded, EventReloaded, EventSearchCleared, EventUnloaded}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestRegistry_Lifecycle(t *testing.T) {
	reg := NewRegistry(memSource{"a.docx": docxtest.ScenarioDocx(t)}, nil)
	a := reg.Create()
	b := reg.Create()
	if a.ID() == b.ID() {
		t.Fatal("duplicate session ids")
	}
	if got, err := reg.Get(a.ID()); err != nil || got != a {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if err := a.Load("a.docx"); err != nil {
		t.Fatal(err)
	}

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("List = %d sessions", len(list))
	}
	for _, item := range list {
		if (item.ID == a.ID()) != (item.Document != nil) {
			t.Errorf("session %s document = %+v", item.ID, item.Document)
		}
	}

	if err := reg.Close(a.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Get(a.ID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after Close = %v", err)
	}
	if err := reg.Close(a.ID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Close = %v", err)
	}

	reg.CloseAll()
	if len(reg.List()) != 0 {
		t.Error("CloseAll left sessions behind")
	}
}

func TestRegistry_ReloadPath(t *testing.T) {
	src := memSource{
		"a.docx": docxtest.ScenarioDocx(t),
		"b.docx": docxtest.ScenarioDocx(t),
	}
	reg := NewRegistry(src, nil)
	s1, s2, s3 := reg.Create(), reg.Create(), reg.Create()
	for _, l := range []struct {
		s *Session
		p string
	}{{s1, "a.docx"}, {s2, "a.docx"}, {s3, "b.docx"}} {
		if err := l.s.Load(l.p); err != nil {
			t.Fatal(err)
		}
	}

	src["a.docx"] = docxtest.Docx(t, docxtest.DefaultStyles(), docxtest.Body(docxtest.Plain("only")))
	n, err := reg.ReloadPath("a.docx")
	if err != nil || n != 2 {
		t.Fatalf("ReloadPath = %d, %v", n, err)
	}
	if info, _ := s1.Info(); info.ParagraphCount != 1 {
		t.Errorf("s1 paragraphs = %d, want 1", info.ParagraphCount)
	}
	if info, _ := s3.Info(); info.ParagraphCount != 4 {
		t.Errorf("s3 changed: %d paragraphs", info.ParagraphCount)
	}

	delete(src, "b.docx")
	if _, err := reg.ReloadPath("b.docx"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("ReloadPath on removed file = %v", err)
	}
}

func TestSession_ConcurrentReaders(t *testing.T) {
	_, s := scenarioSession(t)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for k := 0; k < 50; k++ {
				switch (g + k) % 4 {
				case 0:
					s.Paragraphs(0, 4)
				case 1:
					s.NearestOutlineEntry(k % 4)
				case 2:
					s.Search(models.SearchQuery{Text: "cat"}, 0, 3)
				case 3:
					_ = s.Reload()
				}
			}
		}(g)
	}
	wg.Wait()
	if info, ok := s.Info(); !ok || info.ParagraphCount != 4 {
		t.Errorf("after concurrent use: %+v, %v", info, ok)
	}
}
