package script

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/BTreeMap/CancelPipe/internal/match"
	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/util"
)

// Scenario is the account on file in hard mode. Every summarized field has
// an expected display value the user's answers must match.
type Scenario struct {
	AccountNumber string
	// Answers holds a raw reply per field that produces the expected value.
	Answers  map[models.FieldKey]string
	Expected map[models.FieldKey]string
}

var (
	scenarioNames     = []string{"Avery Thompson", "Jordan McAllister", "Priya Raman", "Marcus Ortega", "Dana Whitfield", "Noor Haddad"}
	scenarioServices  = []string{"internet", "tv", "phone", "streaming", "bundle"}
	scenarioReasons   = []string{"I'm moving", "it's too expensive", "switching to another provider", "the service keeps going down", "I don't use it anymore"}
	scenarioDates     = []string{"asap", "next billing cycle", "end of month"}
	scenarioEquipment = []string{"yes", "no", "I own my modem"}
)

// GenerateScenario builds a consistent account record by running sampled
// replies through the script's own extractors. r may be nil for the global
// random source.
func (s *Script) GenerateScenario(r *rand.Rand) Scenario {
	name := util.Pick(r, scenarioNames)
	answers := map[models.FieldKey]string{
		models.FieldAccountName:     name,
		models.FieldServiceType:     util.Pick(r, scenarioServices),
		models.FieldReason:          util.Pick(r, scenarioReasons),
		models.FieldDate:            util.Pick(r, scenarioDates),
		models.FieldEquipmentStatus: util.Pick(r, scenarioEquipment),
		models.FieldContactMethod:   strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
	}

	sc := Scenario{
		AccountNumber: fmt.Sprintf("ACCT-%s", util.RandomDigits(r, 8)),
		Answers:       make(map[models.FieldKey]string),
		Expected:      make(map[models.FieldKey]string),
	}
	for _, st := range s.Summarized() {
		raw, ok := answers[st.Key]
		if !ok {
			continue
		}
		value, ok := st.Capture(raw)
		if !ok {
			slog.Warn("Script.GenerateScenario: sample answer rejected", "field", st.Key, "answer", raw)
			continue
		}
		sc.Answers[st.Key] = raw
		sc.Expected[st.Key] = value
	}
	slog.Debug("Script.GenerateScenario: scenario generated", "account", sc.AccountNumber, "fields", len(sc.Expected))
	return sc
}

// Expects returns the expected display value for key.
func (sc Scenario) Expects(key models.FieldKey) (string, bool) {
	v, ok := sc.Expected[key]
	return v, ok
}

// Matches reports whether value agrees with the record. Fields without an
// expectation always match.
func (sc Scenario) Matches(key models.FieldKey, value string) bool {
	want, ok := sc.Expected[key]
	return !ok || match.SameValue(want, value)
}

// AccountCard renders the account on file: its number, then the expected
// value of every summarized field in script order.
func (s *Script) AccountCard(sc Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Account on file: %s", sc.AccountNumber)
	for _, st := range s.Summarized() {
		if v, ok := sc.Expected[st.Key]; ok {
			fmt.Fprintf(&b, "\n- %s: %s", st.Label, v)
		}
	}
	return b.String()
}
