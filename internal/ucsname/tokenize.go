// Package ucsname implements the UCS filename codec: parsing a filename
// stem into its CatID/FXName/CreatorID/SourceID blocks, fuzzy-matching a
// non-conforming stem against the taxonomy, and generating a conforming
// stem from a record's fields.
package ucsname

import (
	"regexp"
	"strings"
)

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// Tokenize splits a filename stem into lowercase, deduplicated tokens of at
// least 3 characters, breaking on '_', '-', space, '.', and camelCase
// boundaries. Token order is preserved (first occurrence wins).
func Tokenize(stem string) []string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '.':
			return ' '
		}
		return r
	}, stem)
	replaced = camelBoundary.ReplaceAllString(replaced, "$1 $2")

	fields := strings.Fields(replaced)
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		lower := strings.ToLower(f)
		if len(lower) < 3 || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	return out
}

func stemOf(filename string) string {
	if i := strings.LastIndexByte(filename, '.'); i >= 0 && strings.EqualFold(filename[i:], ".wav") {
		return filename[:i]
	}
	return filename
}
