package utils

import (
	"strings"
	"unicode/utf8"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// TruncateString shortens a string to at most maxLen runes, appending an
// ellipsis when the string was cut.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	truncated := strings.TrimSpace(string(runes[:maxLen]))
	return truncated + "..."
}
