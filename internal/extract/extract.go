// Package extract turns free-text replies into typed field candidates.
//
// Every extractor is a pure function over the raw reply. A false second
// return value means no usable value could be parsed; extractors never panic
// or return errors.
package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Extractor parses a raw reply into a canonical candidate value.
type Extractor func(raw string) (string, bool)

// Formatter renders a canonical candidate as the display string stored in the summary.
type Formatter func(candidate string) string

// Identity is the formatter for extractors whose candidate is already the display value.
func Identity(candidate string) string { return candidate }

// TitleCase upper-cases the first letter of each word and lower-cases the rest.
// A Caser holds state, so each call builds its own.
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// collapseSpaces trims s and squeezes internal whitespace runs to one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// trimPunctuation strips sentence punctuation and quotes from both ends.
func trimPunctuation(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,!?;:\"'“”‘’ ")
}
