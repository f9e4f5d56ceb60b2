package search

import (
	"reflect"
	"testing"
)

func TestParseTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"single term", "foo", []string{"foo"}},
		{"whitespace split", "foo bar  baz", []string{"foo", "bar", "baz"}},
		{"quoted phrase", `"foo bar" baz`, []string{"foo bar", "baz"}},
		{"phrase at end", `baz "foo bar"`, []string{"baz", "foo bar"}},
		{"adjacent quotes", `"a b""c d"`, []string{"a b", "c d"}},
		{"unterminated quote", `foo "bar baz`, []string{"foo", "bar baz"}},
		{"empty", "", nil},
		{"only spaces", "   ", nil},
		{"tabs and newlines", "a\tb\nc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTerms(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTerms(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractTimestamp(t *testing.T) {
	ts, ok := ExtractTimestamp("note [3/7/2024 9:05 AM] follow-up")
	if !ok {
		t.Fatal("timestamp not found")
	}
	if ts.Year() != 2024 || ts.Month() != 3 || ts.Day() != 7 || ts.Hour() != 9 || ts.Minute() != 5 {
		t.Errorf("parsed %v", ts)
	}

	ts, ok = ExtractTimestamp("evening [12/31/2023 11:59 PM]")
	if !ok || ts.Hour() != 23 {
		t.Errorf("PM parsing failed: %v %v", ts, ok)
	}

	if _, ok := ExtractTimestamp("no timestamp here"); ok {
		t.Error("false positive timestamp")
	}
	if _, ok := ExtractTimestamp("[2024-03-07 09:05]"); ok {
		t.Error("ISO format should not match the bracketed AM/PM token")
	}
}
