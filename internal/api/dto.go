package api

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docxreader/internal/docservice"
	"github.com/starford/docxreader/internal/index"
	"github.com/starford/docxreader/internal/models"
)

// maxQueryLen bounds the search text accepted over HTTP.
const maxQueryLen = 1024

// LoadRequest is the request body for loading a library document into a session.
type LoadRequest struct {
	Path string `json:"path" example:"reports/q1.docx" validate:"required"`
}

// Validate checks the request.
func (r LoadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path,
			validation.Required,
			validation.By(func(any) error {
				if strings.HasPrefix(r.Path, "/") || strings.Contains(r.Path, "..") {
					return validation.NewError("validation_path_relative", "must be relative to the library")
				}
				return nil
			}),
		),
	)
}

// SearchRequest is the request body for searching the loaded document.
type SearchRequest struct {
	Text        string `json:"text" example:"cats"`
	MatchCase   bool   `json:"match_case"`
	OnlyOutline bool   `json:"only_outline"`
	I           int    `json:"i" example:"0"`
	J           *int   `json:"j,omitempty" example:"20"`
}

// Validate checks the request.
func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Length(0, maxQueryLen)),
		validation.Field(&r.I, validation.Min(0)),
		validation.Field(&r.J, validation.Min(0)),
	)
}

// Query converts the request to a domain query.
func (r SearchRequest) Query() models.SearchQuery {
	return models.SearchQuery{Text: r.Text, MatchCase: r.MatchCase, OnlyOutline: r.OnlyOutline}
}

// SessionResponse describes one session.
type SessionResponse = docservice.SessionInfo

// SessionListResponse wraps session listings.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions" validate:"required"`
}

// ParagraphWindowResponse wraps a paragraph window.
type ParagraphWindowResponse struct {
	Paragraphs []models.Paragraph `json:"paragraphs" validate:"required"`
	I          int                `json:"i"`
	J          int                `json:"j"`
	Total      int                `json:"total"`
}

// OutlineWindowResponse wraps an outline window.
type OutlineWindowResponse struct {
	Entries []models.OutlineEntry `json:"entries" validate:"required"`
	I       int                   `json:"i"`
	J       int                   `json:"j"`
	Total   int                   `json:"total"`
}

// NearestResponse is the answer of the nearest-heading lookup.
type NearestResponse struct {
	Found bool                 `json:"found"`
	Entry *models.OutlineEntry `json:"entry,omitempty"`
}

// SearchResponse wraps search results of the loaded document.
type SearchResponse struct {
	Results []models.SearchResult `json:"results" validate:"required"`
	I       int                   `json:"i"`
	J       int                   `json:"j"`
}

// LibraryResponse wraps a library listing.
type LibraryResponse struct {
	Documents []models.DocumentMetadata `json:"documents" validate:"required"`
}

// CatalogResponse wraps a page of catalog entries.
type CatalogResponse struct {
	Documents []models.CatalogEntry `json:"documents" validate:"required"`
	Total     int                   `json:"total" example:"42"`
}

// LibrarySearchResponse wraps catalog search hits.
type LibrarySearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
