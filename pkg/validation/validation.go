package validation

import (
	"strings"
	"unicode/utf8"
)

// MaxCommentLength bounds the stored comment text in runes.
const MaxCommentLength = 2000

// SanitizeString trims whitespace and removes null bytes.
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	return input
}

// ValidateComment reports whether text is non-empty and within MaxCommentLength.
func ValidateComment(text string) bool {
	n := utf8.RuneCountInString(text)
	return n > 0 && n <= MaxCommentLength
}
