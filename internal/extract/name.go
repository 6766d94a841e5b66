package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxNameWords = 5

var (
	namePreamble = regexp.MustCompile(`(?i)^(?:(?:my|the|our)\s+)?(?:full\s+)?(?:(?:account\s+)?(?:holder'?s?\s+)?name\s+is|name\s*:|account\s+is\s+under|it'?s\s+under|it\s+is\s+under|it'?s|it\s+is|this\s+is|i\s+am|i'?m|under)\s+`)
	nameWord     = regexp.MustCompile(`^\p{L}[\p{L}'’\-.]*$`)
	mcPrefix     = regexp.MustCompile(`^Mc\p{Ll}`)
)

// Name extracts an account holder name such as "jane mcallister" and returns
// it title-cased ("Jane McAllister").
func Name(raw string) (string, bool) {
	s := trimPunctuation(raw)
	s = namePreamble.ReplaceAllString(s, "")
	s = trimPunctuation(collapseSpaces(s))
	if s == "" || hasDigit(s) || strings.Contains(s, "@") {
		return "", false
	}

	words := strings.Fields(s)
	if len(words) > maxNameWords {
		return "", false
	}
	for _, w := range words {
		if !nameWord.MatchString(w) {
			return "", false
		}
	}
	if letterCount(s) < 2 {
		return "", false
	}

	for i, w := range words {
		words[i] = titleName(w)
	}
	return strings.Join(words, " "), true
}

// titleName title-cases one word and capitalizes the letter after a "Mc" prefix.
func titleName(w string) string {
	t := TitleCase(w)
	if mcPrefix.MatchString(t) {
		r, size := utf8.DecodeRuneInString(t[2:])
		t = "Mc" + string(unicode.ToUpper(r)) + t[2+size:]
	}
	return t
}
