package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Truncate returns s truncated to at most maxLen bytes with "..." appended if
// truncated. The cut backs up to a rune boundary so multi-byte characters are
// never split. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// CollapseWhitespace trims s and collapses interior whitespace runs to a single space.
func CollapseWhitespace(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	wasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}

// FirstSentence returns the leading sentence of s, up to and including the first
// terminator (. ! ?) followed by whitespace or end of input. Falls back to the
// whole string when no terminator is found.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 >= len(s) {
			return s
		}
		next := s[i+1]
		if next == ' ' || next == '\n' || next == '\t' || next == '\r' {
			return s[:i+1]
		}
	}
	return s
}
