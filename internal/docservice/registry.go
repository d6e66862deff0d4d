// Package docservice keeps the per-client document sessions and implements the
// command surface shared by the HTTP API and the MCP server.
package docservice

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/models"
)

// Session event kinds passed to an EventFunc.
const (
	EventLoaded        = "document.loaded"
	EventUnloaded      = "document.unloaded"
	EventReloaded      = "document.reloaded"
	EventSearchCleared = "search.cleared"
)

// EventFunc is called after a session changes state.
type EventFunc func(kind, sessionID, path string)

// SessionInfo is a lightweight item in a session list.
type SessionInfo struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Document  *models.DocumentInfo `json:"document,omitempty"`
}

// Registry maps session ids to sessions.
type Registry struct {
	src    Source
	log    *slog.Logger
	notify EventFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. Load paths are resolved through src;
// a nil src reads from the local file system.
func NewRegistry(src Source, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		src:      src,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// OnEvent registers fn to receive session events. It must be called before
// sessions are created.
func (r *Registry) OnEvent(fn EventFunc) {
	r.notify = fn
}

// Create opens a new empty session.
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.src, r.log, r.notify)
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	return s, nil
}

// Close unloads and removes the session.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	s.Unload()
	return nil
}

// List returns every session ordered by creation time.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	out := make([]SessionInfo, 0, len(all))
	for _, s := range all {
		item := SessionInfo{ID: s.id, CreatedAt: s.createdAt}
		if info, ok := s.Info(); ok {
			item.Document = &info
		}
		out = append(out, item)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].ID < out[b].ID
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	return out
}

// ReloadPath reloads every session that has path loaded. It returns the number
// of sessions reloaded and the combined errors of the ones that failed.
func (r *Registry) ReloadPath(path string) (int, error) {
	r.mu.RLock()
	var targets []*Session
	for _, s := range r.sessions {
		if info, ok := s.Info(); ok && info.Path == path {
			targets = append(targets, s)
		}
	}
	r.mu.RUnlock()

	var errs error
	n := 0
	for _, s := range targets {
		if err := s.Reload(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", s.id, err))
			continue
		}
		n++
	}
	return n, errs
}

// CloseAll unloads and removes every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.Unload()
	}
}
