package search

import (
	"fmt"
	"regexp"
	"strings"

	"notetree/internal/domain/models"
)

// Matcher evaluates search modes over in-memory content. The Postgres
// engine uses it for line extraction after SQL candidate filtering; the
// grep engine relies on the external tools instead.
type Matcher struct {
	mode  models.SearchMode
	re    *regexp.Regexp
	terms []string
}

// NewMatcher compiles a matcher for the given mode and query. Matching is
// case-insensitive, mirroring the grep invocations.
func NewMatcher(mode models.SearchMode, query string) (*Matcher, error) {
	m := &Matcher{mode: mode}
	switch mode {
	case models.SearchModeRegex:
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			return nil, fmt.Errorf("invalid search pattern: %w", err)
		}
		m.re = re
	case models.SearchModeMatchAny, models.SearchModeMatchAll:
		m.terms = ParseTerms(query)
		if len(m.terms) == 0 {
			return nil, fmt.Errorf("query contains no search terms")
		}
	default:
		return nil, fmt.Errorf("invalid search mode: %q", mode)
	}
	return m, nil
}

// FileMatches reports whether a whole file qualifies: for MATCH_ALL every
// term must occur somewhere in the content, for the other modes at least
// one line has to match.
func (m *Matcher) FileMatches(content string) bool {
	if m.mode == models.SearchModeMatchAll {
		lower := strings.ToLower(content)
		for _, term := range m.terms {
			if !strings.Contains(lower, strings.ToLower(term)) {
				return false
			}
		}
		return true
	}
	for _, line := range strings.Split(content, "\n") {
		if m.MatchLine(line) {
			return true
		}
	}
	return false
}

// MatchLine reports whether one line is a reportable hit. Under MATCH_ALL
// the reported lines are those containing any term, taken from files that
// already passed FileMatches.
func (m *Matcher) MatchLine(line string) bool {
	if m.mode == models.SearchModeRegex {
		return m.re.MatchString(line)
	}
	lower := strings.ToLower(line)
	for _, term := range m.terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Terms returns the parsed query terms (empty for regex mode).
func (m *Matcher) Terms() []string { return m.terms }
