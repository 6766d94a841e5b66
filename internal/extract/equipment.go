package extract

import "github.com/BTreeMap/CancelPipe/internal/match"

// Canonical equipment candidates.
const (
	EquipmentReturn = "return"
	EquipmentNone   = "none"
	EquipmentOwned  = "owned"
)

var (
	ownedTerms  = []string{"my own", "i own", "i bought", "bought it", "purchased", "customer owned", "owned by me"}
	noneTerms   = []string{"none", "nothing", "no equipment", "don't have", "dont have", "do not have", "didn't get", "not any"}
	returnTerms = []string{"modem", "router", "box", "gateway", "receiver", "dvr", "remote", "cable box", "set top box", "return", "rented", "leased"}
)

// Equipment classifies whether the customer has rented equipment to send back.
func Equipment(raw string) (string, bool) {
	switch {
	case match.ContainsAny(raw, ownedTerms...):
		return EquipmentOwned, true
	case match.ContainsAny(raw, noneTerms...):
		return EquipmentNone, true
	}
	switch match.ClassifyYesNo(raw) {
	case match.No:
		return EquipmentNone, true
	case match.Yes:
		return EquipmentReturn, true
	}
	if match.ContainsAny(raw, returnTerms...) {
		return EquipmentReturn, true
	}
	return "", false
}

// FormatEquipment renders the canned sentence for an equipment candidate.
func FormatEquipment(candidate string) string {
	switch candidate {
	case EquipmentReturn:
		return "Equipment to return (a prepaid shipping label will be emailed)"
	case EquipmentOwned:
		return "Customer-owned equipment, nothing to return"
	case EquipmentNone:
		return "No equipment to return"
	}
	return candidate
}
