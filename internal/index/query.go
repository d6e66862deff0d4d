package index

import (
	"database/sql"
	"strings"
)

// defaultSearchLimit applies when a caller passes a non-positive limit.
const defaultSearchLimit = 20

// ftsQuery turns free text into an FTS5 expression that matches documents
// containing every word. Words are quoted so operators and punctuation in user
// input are taken literally.
func ftsQuery(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " ")
}

// likePattern escapes LIKE wildcards in text and wraps it for a substring match.
// Use with ESCAPE '\'.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(text) + "%"
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
