package models

// SearchQuery describes one search request. Two queries are the same only if
// all fields match.
type SearchQuery struct {
	Text        string `json:"text"`
	MatchCase   bool   `json:"match_case"`
	OnlyOutline bool   `json:"only_outline"`
}

// SearchResult is one match occurrence.
type SearchResult struct {
	Link       int       `json:"link"`
	Index      int       `json:"index"`
	Paragraph  Paragraph `json:"para"`
	QueryIndex int       `json:"query_index"`
}
