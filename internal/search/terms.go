package search

import "strings"

// ParseTerms tokenizes a query into search terms. Double-quoted phrases
// become single terms; everything else splits on whitespace. Quotes are
// stripped from the result.
func ParseTerms(query string) []string {
	var terms []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			terms = append(terms, cur.String())
			cur.Reset()
		}
	}

	for _, r := range query {
		switch {
		case r == '"':
			if inQuote {
				flush()
			}
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return terms
}
