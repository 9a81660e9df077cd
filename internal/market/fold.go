package market

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FoldQuery lowercases s for case-insensitive comparison and cache keys.
// A Caser is not safe for concurrent use, so one is built per call.
func FoldQuery(s string) string {
	return cases.Lower(language.Und).String(s)
}

func containsFolded(haystack, foldedNeedle string) bool {
	return strings.Contains(FoldQuery(haystack), foldedNeedle)
}
