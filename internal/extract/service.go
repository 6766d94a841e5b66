package extract

import (
	"regexp"
	"strings"

	"github.com/BTreeMap/CancelPipe/internal/match"
)

// Service labels used in the summary.
const (
	ServiceInternet  = "Internet"
	ServiceTV        = "Cable TV"
	ServicePhone     = "Phone"
	ServiceStreaming = "Streaming"
	ServiceBundle    = "Bundle (Internet, TV & Phone)"
)

// minServiceFallbackLetters is how many letters an unrecognized reply needs
// before it is accepted verbatim as the service name.
const minServiceFallbackLetters = 4

type serviceKeywords struct {
	label    string
	keywords []string
}

// serviceTable is ordered; bundle keywords win over individual services.
var serviceTable = []serviceKeywords{
	{ServiceBundle, []string{"bundle", "everything", "all services", "all of it", "triple play"}},
	{ServiceInternet, []string{"internet", "wifi", "wi fi", "broadband", "fiber", "fibre", "dsl"}},
	{ServiceTV, []string{"tv", "cable", "television", "satellite", "channels"}},
	{ServicePhone, []string{"phone", "landline", "mobile", "cell", "cellphone", "wireless", "voip"}},
	{ServiceStreaming, []string{"streaming", "stream", "video on demand"}},
}

var serviceFiller = regexp.MustCompile(`(?i)\b(?:i\s+want\s+to\s+cancel|cancel|my|the|service|plan|subscription|please)\b`)

// ServiceTypes returns the service labels in table order.
func ServiceTypes() []string {
	out := make([]string, 0, len(serviceTable))
	for _, s := range serviceTable {
		out = append(out, s.label)
	}
	return out
}

// ServiceType maps a reply onto a service label. A reply naming two or more
// distinct services is a bundle. Unknown replies with enough letters are
// accepted title-cased.
func ServiceType(raw string) (string, bool) {
	var found []string
	for _, entry := range serviceTable {
		if match.ContainsAny(raw, entry.keywords...) {
			if entry.label == ServiceBundle {
				return ServiceBundle, true
			}
			found = append(found, entry.label)
		}
	}
	switch {
	case len(found) == 1:
		return found[0], true
	case len(found) > 1:
		return ServiceBundle, true
	}

	rest := trimPunctuation(collapseSpaces(serviceFiller.ReplaceAllString(raw, " ")))
	if letterCount(rest) < minServiceFallbackLetters || len(rest) > 40 || strings.Contains(rest, "@") {
		return "", false
	}
	return TitleCase(rest), true
}
