package extract

import (
	"regexp"
	"strings"

	"github.com/BTreeMap/CancelPipe/internal/match"
)

// Reason categories shown to the user for ratification.
const (
	ReasonRaccoons    = "Raccoon-related concerns"
	ReasonMoving      = "Moving"
	ReasonSwitching   = "Switching providers"
	ReasonExpensive   = "Too expensive"
	ReasonPoorService = "Poor service quality"
	ReasonNotUsing    = "Not using it enough"
	reasonOtherPrefix = "Other: "
)

// maxReasonSnippet bounds the free-text part of an "Other" reason.
const maxReasonSnippet = 45

type reasonCategory struct {
	label    string
	keywords []string
}

// reasonTable is ordered; the first category with a keyword hit wins.
var reasonTable = []reasonCategory{
	{ReasonRaccoons, []string{"raccoon", "raccoons", "trash panda", "trash pandas"}},
	{ReasonMoving, []string{"moving", "move", "moved", "relocating", "relocation", "new house", "new apartment", "leaving the area", "leaving the country"}},
	{ReasonSwitching, []string{"switch", "switching", "competitor", "another provider", "different provider", "new provider", "better deal", "better offer"}},
	{ReasonExpensive, []string{"expensive", "price", "prices", "pricing", "cost", "costs", "costly", "bill", "bills", "afford", "money", "cheaper", "overpriced", "too much", "rate increase"}},
	{ReasonPoorService, []string{"slow", "outage", "outages", "unreliable", "drops", "dropping", "buffering", "bad service", "poor service", "customer service", "support", "keeps going down", "terrible", "awful"}},
	{ReasonNotUsing, []string{"not using", "don't use", "dont use", "do not use", "rarely", "never use", "barely", "no longer need", "don't need", "dont need", "do not need"}},
}

var quoteChars = regexp.MustCompile(`["“”]+`)

// ReasonCategories returns the category labels in table order.
func ReasonCategories() []string {
	out := make([]string, 0, len(reasonTable))
	for _, c := range reasonTable {
		out = append(out, c.label)
	}
	return out
}

// Reason categorizes a free-text cancellation reason. Replies that match no
// category become "Other: <snippet>"; replies with fewer than three letters
// are rejected.
func Reason(raw string) (string, bool) {
	text := strings.ReplaceAll(raw, "’", "'")
	if letterCount(text) < 3 {
		return "", false
	}
	for _, c := range reasonTable {
		if match.ContainsAny(text, c.keywords...) {
			return c.label, true
		}
	}
	snippet := ShortenForContext(trimPunctuation(raw), maxReasonSnippet)
	if snippet == "" {
		return "", false
	}
	return reasonOtherPrefix + snippet, true
}

// ShortenForContext strips quotes and cuts text to maxLength, dropping a
// dangling partial word when possible.
func ShortenForContext(text string, maxLength int) string {
	cleaned := strings.TrimSpace(quoteChars.ReplaceAllString(text, ""))
	if len([]rune(cleaned)) <= maxLength {
		return cleaned
	}
	truncated := string([]rune(cleaned)[:maxLength])
	if i := strings.LastIndexFunc(truncated, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }); i > 0 {
		if trimmed := strings.TrimSpace(truncated[:i]); trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(truncated)
}
