package extract

import "github.com/BTreeMap/CancelPipe/internal/match"

// Screening candidates.
const (
	HumanConfirmed  = "Confirmed human"
	TreatyRenounced = "All raccoon treaties renounced"
	ChallengePassed = "Passed"
)

// HumanCheck accepts only an unambiguous "yes, I am human".
func HumanCheck(raw string) (string, bool) {
	if match.ClassifyYesNo(raw) == match.Yes {
		return HumanConfirmed, true
	}
	return "", false
}

// Treaty accepts a reply that renounces every raccoon agreement.
func Treaty(raw string) (string, bool) {
	if match.Renounces(raw) {
		return TreatyRenounced, true
	}
	return "", false
}
