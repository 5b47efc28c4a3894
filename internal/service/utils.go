package service

import (
	"strings"
	"unicode/utf8"
)

// cleanText trims a CSV text cell and drops invalid or replaced UTF-8
// sequences, which PostgreSQL rejects in TEXT columns.
func cleanText(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == utf8.RuneError {
			return -1
		}
		return r
	}, s))
}
