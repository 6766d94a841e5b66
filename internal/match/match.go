// Package match provides the string matchers the extractors are built from:
// normalization, boundary-aware phrase containment, yes/no classification
// and renunciation detection. Every function is pure.
package match

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s, collapses every run of non-alphanumerics to a
// single space and trims the result.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Tokens returns the normalized words of s.
func Tokens(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// PhraseContains reports whether phrase occurs in text as a whole-word run,
// ignoring case and punctuation.
func PhraseContains(text, phrase string) bool {
	t, p := Normalize(text), Normalize(phrase)
	if p == "" {
		return false
	}
	if t == p {
		return true
	}
	return strings.Contains(" "+t+" ", " "+p+" ")
}

// ContainsAny reports whether any of the phrases occurs in text on word boundaries.
func ContainsAny(text string, phrases ...string) bool {
	for _, p := range phrases {
		if PhraseContains(text, p) {
			return true
		}
	}
	return false
}

// IndexPhrase returns the token index at which phrase starts in tokens, or -1.
func IndexPhrase(tokens []string, phrase string) int {
	want := Tokens(phrase)
	if len(want) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(want) <= len(tokens); i++ {
		for j, w := range want {
			if tokens[i+j] != w {
				continue outer
			}
		}
		return i
	}
	return -1
}

// SameValue compares two display values after normalization.
func SameValue(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

var noChangePhrases = []string{
	"nothing",
	"change nothing",
	"no changes",
	"no change",
	"never mind",
	"nevermind",
	"all good as is",
	"leave it",
	"keep it as is",
}

// IsNoChange reports whether the reply asks to leave the summary untouched.
func IsNoChange(text string) bool {
	n := Normalize(text)
	for _, p := range noChangePhrases {
		if n == Normalize(p) {
			return true
		}
	}
	return false
}
