package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docxreader/internal/docservice"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AuthEnabled bool
	Token       string
	MaxWindow   int
	MaxUpload   int64
}

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(reg *docservice.Registry, lib *docservice.Library, opts RouterOptions, sseHandler http.Handler) chi.Router {
	h := NewHandler(reg, opts.MaxWindow)
	lh := NewLibraryHandler(lib, opts.MaxUpload)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

	// Sessions.
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions", h.ListSessions)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Delete("/", h.CloseSession)
		r.Post("/load", h.Load)
		r.Post("/unload", h.Unload)
		r.Get("/document", h.Document)
		r.Get("/paragraphs", h.Paragraphs)
		r.Get("/outline", h.Outline)
		r.Get("/outline/nearest", h.Nearest)
		r.Post("/search", h.Search)
		r.Delete("/search", h.ClearSearch)
	})

	// Library.
	r.Get("/library", lh.List)
	r.Post("/library", lh.Upload)
	r.Get("/library/catalog", lh.Catalog)
	r.Get("/library/search", lh.Search)
	r.Delete("/library/*", lh.Delete)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
