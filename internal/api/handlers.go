package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docxreader/internal/apperr"
	"github.com/starford/docxreader/internal/docservice"
)

// Handler holds the session route handlers.
type Handler struct {
	reg       *docservice.Registry
	maxWindow int
}

// NewHandler creates a new Handler. maxWindow caps j-i of every window request.
func NewHandler(reg *docservice.Registry, maxWindow int) *Handler {
	if maxWindow <= 0 {
		maxWindow = 500
	}
	return &Handler{reg: reg, maxWindow: maxWindow}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*docservice.Session, bool) {
	s, err := h.reg.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get session", err)
		return nil, false
	}
	return s, true
}

// window reads the i and j query parameters. A missing i is 0; a missing j is
// i+maxWindow. Negative values are malformed.
func (h *Handler) window(q url.Values) (int, int, error) {
	i, err := intParam(q, "i", 0)
	if err != nil {
		return 0, 0, err
	}
	j, err := intParam(q, "j", i+h.maxWindow)
	if err != nil {
		return 0, 0, err
	}
	return i, min(j, i+h.maxWindow), nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &apperr.QueryError{Field: name, Msg: "must be an integer"}
	}
	if n < 0 {
		return 0, &apperr.QueryError{Field: name, Msg: "must not be negative"}
	}
	return n, nil
}

// CreateSession handles POST /api/sessions.
//
//	@Summary		Open a new empty session
//	@Tags			sessions
//	@Produce		json
//	@Success		201	{object}	SessionResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	s := h.reg.Create()
	writeJSON(w, http.StatusCreated, SessionResponse{ID: s.ID(), CreatedAt: s.CreatedAt()})
}

// ListSessions handles GET /api/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SessionListResponse{Sessions: h.reg.List()})
}

// CloseSession handles DELETE /api/sessions/{id}.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Close(chi.URLParam(r, "id")); err != nil {
		writeError(w, "close session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Load handles POST /api/sessions/{id}/load.
//
//	@Summary		Load a library document into the session
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Session id"
//	@Param			body	body		LoadRequest	true	"Library path"
//	@Success		200		{object}	models.DocumentInfo
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/load [post]
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "load", err)
		return
	}
	if err := s.Load(req.Path); err != nil {
		writeError(w, "load", err)
		return
	}
	info, _ := s.Info()
	writeJSON(w, http.StatusOK, info)
}

// Unload handles POST /api/sessions/{id}/unload.
func (h *Handler) Unload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Unload()
	w.WriteHeader(http.StatusNoContent)
}

// Document handles GET /api/sessions/{id}/document.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	info, loaded := s.Info()
	if !loaded {
		writeError(w, "document", apperr.ErrNoDocument)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Paragraphs handles GET /api/sessions/{id}/paragraphs?i=&j=.
//
//	@Summary		Read a window of paragraphs
//	@Tags			document
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Param			i	query		int		false	"First position"
//	@Param			j	query		int		false	"One past the last position"
//	@Success		200	{object}	ParagraphWindowResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/paragraphs [get]
func (h *Handler) Paragraphs(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	i, j, err := h.window(r.URL.Query())
	if err != nil {
		writeError(w, "paragraphs", err)
		return
	}
	info, _ := s.Info()
	writeJSON(w, http.StatusOK, ParagraphWindowResponse{
		Paragraphs: s.Paragraphs(i, j),
		I:          i,
		J:          j,
		Total:      info.ParagraphCount,
	})
}

// Outline handles GET /api/sessions/{id}/outline?i=&j=.
func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	i, j, err := h.window(r.URL.Query())
	if err != nil {
		writeError(w, "outline", err)
		return
	}
	info, _ := s.Info()
	writeJSON(w, http.StatusOK, OutlineWindowResponse{
		Entries: s.OutlineEntries(i, j),
		I:       i,
		J:       j,
		Total:   info.OutlineCount,
	})
}

// Nearest handles GET /api/sessions/{id}/outline/nearest?position=.
func (h *Handler) Nearest(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	if q.Get("position") == "" {
		writeError(w, "nearest", &apperr.QueryError{Field: "position", Msg: "is required"})
		return
	}
	pos, err := intParam(q, "position", 0)
	if err != nil {
		writeError(w, "nearest", err)
		return
	}
	e, found := s.NearestOutlineEntry(pos)
	resp := NearestResponse{Found: found}
	if found {
		resp.Entry = &e
	}
	writeJSON(w, http.StatusOK, resp)
}

// Search handles POST /api/sessions/{id}/search.
//
//	@Summary		Search the loaded document
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session id"
//	@Param			body	body		SearchRequest	true	"Query and result window"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, "search", err)
		return
	}
	j := req.I + h.maxWindow
	if req.J != nil {
		j = min(*req.J, j)
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Results: s.Search(req.Query(), req.I, j),
		I:       req.I,
		J:       j,
	})
}

// ClearSearch handles DELETE /api/sessions/{id}/search.
func (h *Handler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.ClearSearch()
	w.WriteHeader(http.StatusNoContent)
}
