package match

import "regexp"

// Vocabulary for the treaty renunciation check.
var (
	CategoryTerms  = []string{"raccoon", "raccoons", "trash panda", "trash pandas", "procyon", "procyonid"}
	AgreementTerms = []string{
		"treaty", "treaties", "pact", "pacts", "deal", "deals", "agreement", "agreements",
		"alliance", "alliances", "accord", "accords", "contract", "contracts", "covenant", "covenants",
	}
	NegationWords = []string{"no", "not", "never", "none", "zero", "without", "nor"}
)

// negationWindow is how many tokens a negation may sit from an agreement term.
const negationWindow = 3

var (
	contradictionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:no|not|never|zero)\s+(?:any\s+)?(?:intention|intentions|plan|plans|intend|going|desire|wish)\s+(?:of\s+|to\s+)?(?:renounc|abandon|break|leave|cancel|end|give)`),
		regexp.MustCompile(`\b(?:won'?t|will not|would not|wouldn'?t|refuse to|cannot|can'?t|do not|don'?t|never)\s+(?:ever\s+)?(?:renounce|abandon|break|cancel|give up|end|leave|betray)`),
		regexp.MustCompile(`\b(?:keep|keeping|honor|honour|uphold|upholding)\s+(?:my|our|all|the|every)?\s*(?:raccoon\s+|trash panda\s+)?(?:treat|pact|deal|agreement|alliance|accord)`),
		regexp.MustCompile(`\b(?:sign|signed|signing|join|joined|ratify|ratified)\s+(?:a|an|the|new|another)?\s*(?:raccoon\s+)?(?:treat|pact|deal|agreement|alliance|accord)`),
	}
	renunciationVerbs = regexp.MustCompile(`\b(?:renounce[sd]?|renouncing|abandon(?:s|ed|ing)?|revoke[sd]?|revoking|cancel(?:s|led|ed|ling)?|terminate[sd]?|terminating|break(?:ing|s)?|broke|broken|end(?:s|ed|ing)?|dissolve[sd]?|withdr[ae]w(?:n)?|forsake|forsook|reject(?:s|ed)?|nullif(?:y|ied)|void(?:ed)?|tear up|tore up|sever(?:ed)?|disavow(?:ed)?)\b`)
)

// Renounces reports whether text renounces agreements with raccoons.
//
// The text must mention the category and an agreement term, must not match a
// contradiction pattern, and must either use a renunciation verb or place a
// negation within negationWindow tokens of an agreement term. A contradiction
// rejects the text even when a renunciation verb appears elsewhere.
func Renounces(text string) bool {
	if !ContainsAny(text, CategoryTerms...) || !ContainsAny(text, AgreementTerms...) {
		return false
	}
	lower := normalizeApostrophes(text)
	for _, re := range contradictionPatterns {
		if re.MatchString(lower) {
			return false
		}
	}
	if renunciationVerbs.MatchString(lower) {
		return true
	}
	return negationNearAgreement(Tokens(text))
}

func negationNearAgreement(tokens []string) bool {
	isAgreement := make(map[string]bool, len(AgreementTerms))
	for _, a := range AgreementTerms {
		isAgreement[a] = true
	}
	isNegation := make(map[string]bool, len(NegationWords))
	for _, n := range NegationWords {
		isNegation[n] = true
	}
	for i, tok := range tokens {
		if !isAgreement[tok] {
			continue
		}
		lo, hi := max(0, i-negationWindow), min(len(tokens)-1, i+negationWindow)
		for j := lo; j <= hi; j++ {
			if isNegation[tokens[j]] {
				return true
			}
		}
	}
	return false
}
