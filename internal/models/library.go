package models

import "time"

// DocumentInfo summarises the document currently loaded in a session.
type DocumentInfo struct {
	Path           string    `json:"path"`
	Checksum       string    `json:"checksum"`
	Title          string    `json:"title"`
	ParagraphCount int       `json:"paragraph_count"`
	OutlineCount   int       `json:"outline_count"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// DocumentMetadata is a lightweight representation returned by library listings.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CatalogEntry is one indexed library document.
type CatalogEntry struct {
	Path           string    `json:"path"`
	Title          string    `json:"title"`
	Checksum       string    `json:"checksum"`
	ParagraphCount int       `json:"paragraph_count"`
	OutlineCount   int       `json:"outline_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}
