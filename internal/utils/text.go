package utils

import (
	"regexp"
	"strings"
)

var (
	// Line breaks and tabs never survive inside a single-line record
	lineBreakChars = regexp.MustCompile(`[\r\n\t]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// StripField prepares free text for a delimited single-line record.
// Every occurrence of the delimiter and every line break becomes a space,
// runs of whitespace collapse and the result is trimmed.
func StripField(value string, delimiter rune) string {
	value = strings.ReplaceAll(value, string(delimiter), " ")
	value = lineBreakChars.ReplaceAllString(value, " ")
	value = multipleSpaces.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}

// EqualFold compares two strings ignoring case and surrounding whitespace.
func EqualFold(a, b string) bool {
	return fold(strings.TrimSpace(a)) == fold(strings.TrimSpace(b))
}
