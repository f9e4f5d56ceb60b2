package search

import (
	"testing"

	"notetree/internal/domain/models"
)

func TestMatcherMatchAll(t *testing.T) {
	// Quoted phrase plus a bare term: only content containing both the
	// exact phrase and the term qualifies.
	m, err := NewMatcher(models.SearchModeMatchAll, `"foo bar" baz`)
	if err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"f1": "foo bar baz",
		"f2": "foo baz",
		"f3": "bar baz",
	}
	var matched []string
	for name, content := range files {
		if m.FileMatches(content) {
			matched = append(matched, name)
		}
	}
	if len(matched) != 1 || matched[0] != "f1" {
		t.Errorf("MATCH_ALL matched %v, want [f1]", matched)
	}
}

func TestMatcherMatchAny(t *testing.T) {
	m, err := NewMatcher(models.SearchModeMatchAny, "alpha beta")
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchLine("contains ALPHA only") {
		t.Error("case-insensitive any-term match failed")
	}
	if !m.MatchLine("has beta") {
		t.Error("second term should match")
	}
	if m.MatchLine("gamma delta") {
		t.Error("unrelated line should not match")
	}
}

func TestMatcherRegex(t *testing.T) {
	m, err := NewMatcher(models.SearchModeRegex, `^\d+_`)
	if err != nil {
		t.Fatal(err)
	}
	if !m.MatchLine("0001_entry") {
		t.Error("regex should match ordinal prefix")
	}
	if m.MatchLine("entry_0001") {
		t.Error("regex anchored at start should not match")
	}

	if _, err := NewMatcher(models.SearchModeRegex, "("); err == nil {
		t.Error("invalid pattern should fail to compile")
	}
}

func TestMatcherEmptyQuery(t *testing.T) {
	if _, err := NewMatcher(models.SearchModeMatchAny, "   "); err == nil {
		t.Error("whitespace-only query should be rejected")
	}
}
