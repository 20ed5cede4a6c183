// Package sanitizer prepares document-derived strings for one-line terminal output.
package sanitizer

import (
	"strings"
	"unicode"
)

// Line collapses every whitespace run, newlines included, into a single
// space, drops other control characters and trims the result.
func Line(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
