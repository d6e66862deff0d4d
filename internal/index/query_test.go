package index

import "testing"

func TestFTSQuery(t *testing.T) {
	cases := map[string]string{
		"cats":          `"cats"`,
		"  cats  dogs ": `"cats" "dogs"`,
		`say "hi"`:      `"say" """hi"""`,
		"a OR b":        `"a" "OR" "b"`,
		"":              "",
	}
	for in, want := range cases {
		if got := ftsQuery(in); got != want {
			t.Errorf("ftsQuery(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLikePattern(t *testing.T) {
	if got := likePattern(`50%_off\`); got != `%50\%\_off\\%` {
		t.Errorf("likePattern = %s", got)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(entry("a.docx", "A", "1"), "anything")
	results, err := db.Search("   ", 10)
	if err != nil || len(results) != 0 {
		t.Errorf("Search(blank) = %v, %v", results, err)
	}
}

func TestSearch_PunctuationIsLiteral(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(entry("a.docx", "A", "1"), "plain words")
	if _, err := db.Search(`"unbalanced (AND`, 10); err != nil {
		t.Errorf("Search with operators failed: %v", err)
	}
}
