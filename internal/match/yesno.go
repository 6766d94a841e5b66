package match

import (
	"regexp"
	"sort"
	"strings"
)

// Answer is the outcome of a yes/no classification.
type Answer int

const (
	// Unclear means the reply needs clarification. It is never treated as "no".
	Unclear Answer = iota
	Yes
	No
)

// String returns the answer name for logging.
func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unclear"
	}
}

// AffirmativeWords are matched as whole words or phrases.
var AffirmativeWords = []string{
	"yes", "y", "yeah", "yep", "yup", "ya", "sure", "correct", "right",
	"affirmative", "ok", "okay", "absolutely", "definitely", "of course",
	"that's right", "confirm", "confirmed", "sounds good", "looks good",
	"go ahead", "indeed", "certainly",
}

// NegativeWords are matched as whole words or phrases.
var NegativeWords = []string{
	"no", "n", "nope", "nah", "negative", "incorrect", "wrong",
	"not right", "not correct", "not quite", "not really", "absolutely not",
	"definitely not", "of course not", "that's wrong",
}

var (
	affirmativeIdioms = []*regexp.Regexp{
		regexp.MustCompile(`\bi(?:'| a)?m (?:a )?(?:real )?human\b`),
		regexp.MustCompile(`\byes please\b`),
		regexp.MustCompile(`\bthat(?:'s| is) (?:correct|right)\b`),
		regexp.MustCompile(`\bsounds? (?:about )?right\b`),
	}
	negativeIdioms = []*regexp.Regexp{
		regexp.MustCompile(`\bno way\b`),
		regexp.MustCompile(`\bi(?:'| a)?m (?:not|n't) (?:a )?human\b`),
		regexp.MustCompile(`\bi am a raccoon\b`),
		regexp.MustCompile(`\bthat(?:'s| is) not (?:correct|right)\b`),
	}
)

type polarPhrase struct {
	phrase string
	answer Answer
}

// polarPhrases holds both word lists normalized and ordered longest first so a
// negative phrase such as "not right" is consumed before its "right" sub-word.
var polarPhrases = func() []polarPhrase {
	var out []polarPhrase
	for _, w := range AffirmativeWords {
		out = append(out, polarPhrase{Normalize(w), Yes})
	}
	for _, w := range NegativeWords {
		out = append(out, polarPhrase{Normalize(w), No})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(strings.Fields(out[i].phrase)) > len(strings.Fields(out[j].phrase))
	})
	return out
}()

// ClassifyYesNo returns Yes or No when the reply unambiguously contains an
// affirmative or negative word or idiom, and Unclear otherwise. Words only
// count on token boundaries: "yesterday" does not contain "yes".
func ClassifyYesNo(text string) Answer {
	lower := normalizeApostrophes(strings.TrimSpace(text))
	if lower == "" {
		return Unclear
	}

	yes, no := false, false
	for _, re := range negativeIdioms {
		if re.MatchString(lower) {
			no = true
		}
	}
	for _, re := range affirmativeIdioms {
		if re.MatchString(lower) {
			yes = true
		}
	}

	padded := " " + Normalize(lower) + " "
	for _, p := range polarPhrases {
		needle := " " + p.phrase + " "
		if !strings.Contains(padded, needle) {
			continue
		}
		padded = strings.ReplaceAll(padded, needle, "  ")
		if p.answer == Yes {
			yes = true
		} else {
			no = true
		}
	}

	switch {
	case yes && !no:
		return Yes
	case no && !yes:
		return No
	default:
		return Unclear
	}
}
