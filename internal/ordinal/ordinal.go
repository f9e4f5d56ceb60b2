// Package ordinal implements the "NNNN_name" naming convention that encodes
// a node's sort position among its siblings into its own stored name.
//
// Prefixes are zero-padded to at least MinWidth digits so that lexical order
// of full names equals numeric order of ordinals.
package ordinal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"notetree/internal/domain"
)

// MinWidth is the canonical zero-padding of an ordinal prefix.
const MinWidth = 4

var prefixRe = regexp.MustCompile(`^(\d+)_(.*)$`)

// HasPrefix reports whether name starts with an ordinal prefix.
func HasPrefix(name string) bool {
	return prefixRe.MatchString(name)
}

// Parse splits name into its ordinal and the remaining logical name.
// Names without a prefix fail with ErrInvalidName; the caller decides
// whether that means "reject" or "needs allocation".
func Parse(name string) (int, string, error) {
	m := prefixRe.FindStringSubmatch(name)
	if m == nil {
		return 0, "", fmt.Errorf("%w: %q has no ordinal prefix", domain.ErrInvalidName, name)
	}
	ord, err := strconv.Atoi(m[1])
	if err != nil {
		// Digits longer than an int can hold.
		return 0, "", fmt.Errorf("%w: ordinal prefix of %q out of range", domain.ErrInvalidName, name)
	}
	return ord, m[2], nil
}

// Format builds a stored name from an ordinal and a logical name,
// zero-padding the ordinal to at least MinWidth digits.
func Format(ord int, rest string) string {
	return fmt.Sprintf("%0*d_%s", MinWidth, ord, rest)
}

// Strip returns the logical name, i.e. name without its ordinal prefix.
// Names without a prefix are returned unchanged.
func Strip(name string) string {
	if m := prefixRe.FindStringSubmatch(name); m != nil {
		return m[2]
	}
	return name
}

// Normalize rewrites legacy prefixes wider than MinWidth digits: if the
// excess leading digits are all zero they are dropped, otherwise the name
// is rejected. The second return reports whether the name changed.
func Normalize(name string) (string, bool, error) {
	m := prefixRe.FindStringSubmatch(name)
	if m == nil {
		return "", false, fmt.Errorf("%w: %q has no ordinal prefix", domain.ErrInvalidName, name)
	}
	digits := m[1]
	if len(digits) <= MinWidth {
		return name, false, nil
	}
	excess := digits[:len(digits)-MinWidth]
	if strings.Trim(excess, "0") != "" {
		return "", false, fmt.Errorf("%w: %q exceeds %d significant ordinal digits", domain.ErrInvalidName, name, MinWidth)
	}
	return digits[len(digits)-MinWidth:] + "_" + m[2], true, nil
}

// Less orders two stored names by ordinal, falling back to the full name
// when ordinals are equal or unparseable.
func Less(a, b string) bool {
	oa, _, errA := Parse(a)
	ob, _, errB := Parse(b)
	if errA == nil && errB == nil && oa != ob {
		return oa < ob
	}
	return a < b
}
