package api

import (
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docxreader/internal/docservice"
)

// defaultMaxUpload is used when the router is built without an upload limit.
const defaultMaxUpload = 50 << 20 // 50 MB

// LibraryHandler serves library listings, uploads and catalog search.
type LibraryHandler struct {
	lib       *docservice.Library
	maxUpload int64
}

// NewLibraryHandler creates a handler over lib.
func NewLibraryHandler(lib *docservice.Library, maxUpload int64) *LibraryHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &LibraryHandler{lib: lib, maxUpload: maxUpload}
}

// libraryPath extracts the document path from the URL (everything after /api/library/).
// Supports encoded slashes (e.g. reports%2Fq1.docx).
func libraryPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// List handles GET /api/library.
//
//	@Summary		List library documents in natural order
//	@Tags			library
//	@Produce		json
//	@Param			dir	query		string	false	"Sub-directory"
//	@Success		200	{object}	LibraryResponse
//	@Security		BearerAuth
//	@Router			/library [get]
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.lib.List(r.Context(), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, "list library", err)
		return
	}
	writeJSON(w, http.StatusOK, LibraryResponse{Documents: docs})
}

// Catalog handles GET /api/library/catalog.
func (h *LibraryHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	docs, total, err := h.lib.Catalog(r.Context(), limit, max(offset, 0))
	if err != nil {
		writeError(w, "list catalog", err)
		return
	}
	writeJSON(w, http.StatusOK, CatalogResponse{Documents: docs, Total: total})
}

// Search handles GET /api/library/search.
//
//	@Summary		Full-text search across library documents
//	@Tags			library
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	LibrarySearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/library/search [get]
func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.lib.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "library search", err)
		return
	}
	writeJSON(w, http.StatusOK, LibrarySearchResponse{Results: results})
}

// Upload handles POST /api/library (multipart/form-data, field "file").
// The optional form field "dir" places the file in a sub-directory and
// "overwrite=true" replaces an existing file.
//
//	@Summary		Upload a .docx document into the library
//	@Tags			library
//	@Accept			multipart/form-data
//	@Produce		json
//	@Success		201	{object}	models.CatalogEntry
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/library [post]
func (h *LibraryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name := path.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
	if name == "." || name == "/" {
		writeJSON(w, http.StatusBadRequest, errorBody("filename is required"))
		return
	}
	if dir := strings.Trim(r.FormValue("dir"), "/"); dir != "" {
		name = dir + "/" + name
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read upload"))
		return
	}

	overwrite, _ := strconv.ParseBool(r.FormValue("overwrite"))
	entry, err := h.lib.Import(r.Context(), name, data, overwrite)
	if err != nil {
		writeError(w, "upload", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Delete handles DELETE /api/library/*.
func (h *LibraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := libraryPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.lib.Delete(r.Context(), p); err != nil {
		writeError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
