package cmd

import (
	"strings"
	"unicode"
)

// sanitizePath replaces control characters, including the C1 range that
// some terminals treat as escape introducers, with '?' before a path is
// printed.
func sanitizePath(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, s)
}
