// Package search answers multi-mode content queries over one document
// root. Filesystem roots are searched by orchestrating external
// line-oriented and PDF content tools; Postgres roots implement the same
// contract with SQL candidate filtering plus in-process line extraction.
package search

import (
	"context"
	"regexp"
	"time"

	"notetree/internal/domain/models"
)

// Searcher answers one search request scoped to a subtree. A zero-match
// run is success with an empty slice, never an error.
type Searcher interface {
	Search(ctx context.Context, req *models.SearchRequest) ([]models.SearchHit, error)
}

// PDFLine is the sentinel line number reported for PDF hits, whose text
// extraction is not line-addressable.
const PDFLine = -1

// timestampPattern matches the bracketed date-time token used by
// requireDate filtering and embedded-date ordering, e.g. "[3/7/2024 9:05 AM]".
const timestampPattern = `\[[0-9]{1,2}/[0-9]{1,2}/[0-9]{4} [0-9]{1,2}:[0-9]{2} (AM|PM)\]`

const timestampLayout = "1/2/2006 3:04 PM"

var timestampRe = regexp.MustCompile(`\[([0-9]{1,2}/[0-9]{1,2}/[0-9]{4} [0-9]{1,2}:[0-9]{2} [AP]M)\]`)

// ExtractTimestamp parses the first bracketed date-time token in line.
func ExtractTimestamp(line string) (time.Time, bool) {
	m := timestampRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	ts, err := time.Parse(timestampLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
