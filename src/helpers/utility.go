package helpers

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	acronymBoundary = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	wordBoundary    = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// GenerateUUID returns a random UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// Helper function to properly remove quotes from strings
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ToUnderscore converts a CamelCase name to under_score form.
//
//	ToUnderscore("FooBar")   // "foo_bar"
//	ToUnderscore("FOOBar")   // "foo_bar"
//	ToUnderscore("Foo42Bar") // "foo42_bar"
func ToUnderscore(name string) string {
	s := acronymBoundary.ReplaceAllString(name, "${1}_${2}")
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}
