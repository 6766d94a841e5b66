package script

import (
	"regexp"
	"strings"
)

type aliasPattern struct {
	step  int
	alias string
	re    *regexp.Regexp
}

// leadingConnectors strips joining words between a field mention and its
// new value, as in "change the date to tomorrow" or "email: a@b.co".
var leadingConnectors = regexp.MustCompile(`(?i)^(?:[\s:=,\-]+|(?:should\s+be|needs\s+to\s+be|to\s+be|is|to|as|into|be|of|with)\b)*`)

// trailingFiller strips polite tails such as "please".
var trailingFiller = regexp.MustCompile(`(?i)[\s,]*(?:please|thanks|thank\s+you)?[\s.!]*$`)

func aliasRegexp(alias string) *regexp.Regexp {
	words := strings.Fields(regexp.QuoteMeta(alias))
	return regexp.MustCompile(`(?i)\b` + strings.Join(words, `[\s\-]+`) + `\b`)
}

func (s *Script) aliasPatterns() []aliasPattern {
	var out []aliasPattern
	for i, st := range s.steps {
		if !st.Summarized {
			continue
		}
		for _, a := range st.Aliases {
			out = append(out, aliasPattern{step: i, alias: a, re: aliasRegexp(a)})
		}
	}
	return out
}

// FindMention looks for a reference to a summarized field in text. The
// earliest mention wins; at the same position the longest alias wins. rest is
// the text after the mention with connectors removed, which may be empty.
func (s *Script) FindMention(text string) (st Step, rest string, ok bool) {
	bestStart, bestEnd, bestStep := -1, -1, -1
	for _, p := range s.patterns {
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if bestStart < 0 || loc[0] < bestStart || (loc[0] == bestStart && loc[1] > bestEnd) {
			bestStart, bestEnd, bestStep = loc[0], loc[1], p.step
		}
	}
	if bestStep < 0 {
		return Step{}, "", false
	}
	rest = leadingConnectors.ReplaceAllString(text[bestEnd:], "")
	rest = trailingFiller.ReplaceAllString(rest, "")
	return s.steps[bestStep], strings.TrimSpace(rest), true
}
