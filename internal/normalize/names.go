package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeName lowercases, collapses whitespace, and trims the input.
// Drug names are compared in this form, so "Vancomycin " and "vancomycin"
// count as the same agent for newness lookbacks.
// Returns nil if the input is nil or the result is empty.
func NormalizeName(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = strings.ToLower(s)
	s = multiSpace.ReplaceAllString(s, " ")
	return &s
}

// Token canonicalizes a category value for matching: lowercased, trimmed,
// underscores folded to spaces, whitespace collapsed. "Buffy_Coat" and
// "buffy coat" both token to "buffy coat".
func Token(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TokenPtr is Token for nullable inputs; nil tokens to the empty string.
func TokenPtr(v *string) string {
	if v == nil {
		return ""
	}
	return Token(*v)
}
