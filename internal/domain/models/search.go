package models

import "fmt"

// SearchMode selects how the query string is interpreted.
type SearchMode string

const (
	// SearchModeRegex treats the query verbatim as a regular expression.
	SearchModeRegex SearchMode = "regex"
	// SearchModeMatchAny matches lines containing any query term.
	SearchModeMatchAny SearchMode = "match_any"
	// SearchModeMatchAll keeps only files containing every query term,
	// then reports the matching lines from the surviving files.
	SearchModeMatchAll SearchMode = "match_all"
)

// SearchOrder selects how merged results are sorted.
type SearchOrder string

const (
	// OrderModTime sorts by file modification time descending, then
	// filename, then line number ascending.
	OrderModTime SearchOrder = "mod_time"
	// OrderEmbeddedDate sorts by a bracketed date-time token found in the
	// first matching line of each file, newest first.
	OrderEmbeddedDate SearchOrder = "embedded_date"
	// OrderNone preserves tool output order.
	OrderNone SearchOrder = "none"
)

// SearchRequest describes one search over a subtree of a document root.
type SearchRequest struct {
	Query       string      `json:"query"`
	Folder      string      `json:"treeFolder"`
	Mode        SearchMode  `json:"searchMode"`
	RequireDate bool        `json:"requireDate"`
	Order       SearchOrder `json:"searchOrder"`
	// IncludePDF is set by the route, not the payload.
	IncludePDF bool `json:"-"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (r *SearchRequest) ApplyDefaults() {
	if r.Mode == "" {
		r.Mode = SearchModeMatchAny
	}
	if r.Order == "" {
		r.Order = OrderNone
	}
}

// Validate checks the request after defaults have been applied.
func (r *SearchRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	switch r.Mode {
	case SearchModeRegex, SearchModeMatchAny, SearchModeMatchAll:
	default:
		return fmt.Errorf("invalid search mode: %q", r.Mode)
	}
	switch r.Order {
	case OrderModTime, OrderEmbeddedDate, OrderNone:
	default:
		return fmt.Errorf("invalid search order: %q", r.Order)
	}
	return nil
}

// SearchHit is one merged search result. Line is -1 with empty Content for
// hits coming from PDF content, which is not line-addressable.
type SearchHit struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}
