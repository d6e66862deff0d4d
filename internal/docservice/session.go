package docservice

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/document"
	"github.com/starford/docxreader/internal/docx"
	"github.com/starford/docxreader/internal/models"
	"github.com/starford/docxreader/internal/outline"
	"github.com/starford/docxreader/internal/search"
)

// Source resolves load paths to package bytes.
type Source interface {
	Read(path string) ([]byte, error)
}

// Session owns one loaded document and its search state.
//
// Lock order is modelMu, outlineMu, searchMu. Every method that takes more
// than one of them takes them in that order.
type Session struct {
	id        string
	createdAt time.Time
	src       Source
	log       *slog.Logger
	notify    EventFunc

	modelMu    sync.Mutex
	paragraphs []models.Paragraph
	info       models.DocumentInfo
	loaded     bool

	outlineMu sync.Mutex
	outline   []models.OutlineEntry

	searchMu sync.Mutex
	search   *search.Session
}

func newSession(id string, src Source, log *slog.Logger, notify EventFunc) *Session {
	return &Session{
		id:        id,
		createdAt: time.Now().UTC(),
		src:       src,
		log:       log,
		notify:    notify,
		search:    search.NewSession(nil, nil),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Load replaces the session's document with the package at path. State is
// cleared before parsing; on failure the session stays empty.
func (s *Session) Load(path string) error {
	if err := s.load(path); err != nil {
		return err
	}
	s.emit(EventLoaded, path)
	return nil
}

// Reload parses the currently loaded path again.
func (s *Session) Reload() error {
	s.modelMu.Lock()
	path, loaded := s.info.Path, s.loaded
	s.modelMu.Unlock()
	if !loaded {
		return apperr.ErrNoDocument
	}
	if err := s.load(path); err != nil {
		return err
	}
	s.emit(EventReloaded, path)
	return nil
}

func (s *Session) load(path string) error {
	s.modelMu.Lock()
	defer s.modelMu.Unlock()
	s.outlineMu.Lock()
	defer s.outlineMu.Unlock()
	s.searchMu.Lock()
	defer s.searchMu.Unlock()

	s.clearLocked()

	doc, err := s.parse(path)
	if err != nil {
		s.log.Warn("load failed",
			slog.String("session", s.id),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return err
	}

	s.paragraphs = doc.Paragraphs
	s.outline = doc.Outline
	s.search.Reset(doc.Paragraphs, doc.Texts)
	s.info = models.DocumentInfo{
		Path:           path,
		Checksum:       doc.Checksum,
		Title:          doc.Title(),
		ParagraphCount: len(doc.Paragraphs),
		OutlineCount:   len(doc.Outline),
		LoadedAt:       time.Now().UTC(),
	}
	s.loaded = true

	s.log.Info("document loaded",
		slog.String("session", s.id),
		slog.String("path", path),
		slog.Int("paragraphs", len(doc.Paragraphs)),
		slog.Int("outline", len(doc.Outline)),
	)
	return nil
}

func (s *Session) parse(path string) (*document.Document, error) {
	var (
		data []byte
		err  error
	)
	if s.src != nil {
		data, err = s.src.Read(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperr.ErrNotFound)
		}
		return nil, &apperr.PackageError{Path: path, Err: err}
	}
	pkg, err := docx.Parse(path, data)
	if err != nil {
		return nil, err
	}
	return document.Parse(pkg)
}

// Unload drops the document and every cached search result.
func (s *Session) Unload() {
	s.modelMu.Lock()
	s.outlineMu.Lock()
	s.searchMu.Lock()
	path, loaded := s.info.Path, s.loaded
	s.clearLocked()
	s.searchMu.Unlock()
	s.outlineMu.Unlock()
	s.modelMu.Unlock()

	if loaded {
		s.emit(EventUnloaded, path)
	}
}

func (s *Session) clearLocked() {
	s.paragraphs = nil
	s.outline = nil
	s.info = models.DocumentInfo{}
	s.loaded = false
	s.search.Reset(nil, nil)
}

// Info describes the loaded document.
func (s *Session) Info() (models.DocumentInfo, bool) {
	s.modelMu.Lock()
	defer s.modelMu.Unlock()
	return s.info, s.loaded
}

// Paragraphs returns paragraphs [i, j), clipped to the document.
func (s *Session) Paragraphs(i, j int) []models.Paragraph {
	s.modelMu.Lock()
	defer s.modelMu.Unlock()
	return window(s.paragraphs, i, j, models.Paragraph.Clone)
}

// OutlineEntries returns outline entries [i, j), clipped to the outline.
func (s *Session) OutlineEntries(i, j int) []models.OutlineEntry {
	s.outlineMu.Lock()
	defer s.outlineMu.Unlock()
	return window(s.outline, i, j, models.OutlineEntry.Clone)
}

// NearestOutlineEntry returns the heading governing the paragraph at position.
func (s *Session) NearestOutlineEntry(position int) (models.OutlineEntry, bool) {
	s.modelMu.Lock()
	defer s.modelMu.Unlock()
	s.outlineMu.Lock()
	defer s.outlineMu.Unlock()

	e, ok := outline.Nearest(s.outline, len(s.paragraphs), position)
	if !ok {
		return models.OutlineEntry{}, false
	}
	return e.Clone(), true
}

// Search returns results [i, j) of q.
func (s *Session) Search(q models.SearchQuery, i, j int) []models.SearchResult {
	s.searchMu.Lock()
	defer s.searchMu.Unlock()
	return s.search.Search(q, i, j)
}

// ClearSearch drops cached search results.
func (s *Session) ClearSearch() {
	s.searchMu.Lock()
	s.search.Clear()
	s.searchMu.Unlock()
	s.emit(EventSearchCleared, "")
}

func (s *Session) emit(kind, path string) {
	if s.notify != nil {
		s.notify(kind, s.id, path)
	}
}

func window[T any](items []T, i, j int, clone func(T) T) []T {
	if i < 0 {
		i = 0
	}
	if j > len(items) {
		j = len(items)
	}
	if i >= j {
		return []T{}
	}
	out := make([]T, j-i)
	for k, v := range items[i:j] {
		out[k] = clone(v)
	}
	return out
}
