package script

import (
	"fmt"
	"strings"
	"time"

	"github.com/BTreeMap/CancelPipe/internal/challenge"
	"github.com/BTreeMap/CancelPipe/internal/extract"
	"github.com/BTreeMap/CancelPipe/internal/models"
)

// Pledge phrases typed verbatim during screening.
const (
	PledgePhrase      = "I am not a raccoon"
	TimedPledgePhrase = "Raccoons have no power here"
	LightPledgePhrase = "Trash pandas stay outside"
)

func nameStep() Step {
	return Step{
		Key:         models.FieldAccountName,
		Label:       "Account name",
		Prompt:      "First, what name is the account under?",
		RetryText:   "I didn't catch a name there.",
		Guidance:    `Please give the account holder's first and last name, like "Jane McAllister".`,
		Extract:     extract.Name,
		Format:      extract.Identity,
		Acknowledge: func(v string) string { return fmt.Sprintf("Thanks, %s.", v) },
		Aliases:     []string{"name", "account name", "account holder", "holder"},
		Summarized:  true,
	}
}

func serviceStep() Step {
	return Step{
		Key:         models.FieldServiceType,
		Label:       "Service",
		Prompt:      "Which service would you like to cancel? (internet, TV, phone, streaming, or a bundle)",
		RetryText:   "I'm not sure which service you mean.",
		Guidance:    "Options are: " + strings.Join(extract.ServiceTypes(), ", ") + ".",
		Extract:     extract.ServiceType,
		Format:      extract.Identity,
		Acknowledge: func(v string) string { return fmt.Sprintf("Got it: %s.", v) },
		Aliases:     []string{"service", "plan", "subscription", "service type"},
		Summarized:  true,
	}
}

func reasonStep() Step {
	return Step{
		Key:         models.FieldReason,
		Label:       "Reason",
		Prompt:      "Why do you want to cancel?",
		RetryText:   "Could you tell me a little more about why you're cancelling?",
		Guidance:    "A short sentence is plenty, for example \"it's too expensive\" or \"I'm moving\".",
		Extract:     extract.Reason,
		Format:      extract.Identity,
		Acknowledge: ReasonConfirmPrompt,
		Aliases:     []string{"reason", "why", "cancellation reason"},
		Summarized:  true,
	}
}

func dateStep(now func() time.Time) Step {
	return Step{
		Key:         models.FieldDate,
		Label:       "Effective date",
		Prompt:      "When should the cancellation take effect?",
		RetryText:   "I couldn't work out a date from that, or it's in the past.",
		Guidance:    extract.DateGuidance(),
		Extract:     extract.Date(now),
		Format:      extract.FormatDate,
		Acknowledge: func(v string) string { return fmt.Sprintf("Okay, effective date: %s.", v) },
		Aliases:     []string{"date", "effective date", "cancellation date", "when", "effective"},
		Summarized:  true,
	}
}

func equipmentStep() Step {
	return Step{
		Key:         models.FieldEquipmentStatus,
		Label:       "Equipment",
		Prompt:      "Do you have any equipment to return, like a modem, router, or TV box?",
		RetryText:   "Sorry, I couldn't tell whether you have equipment to return.",
		Guidance:    `Answer "yes", "no", or "I own my equipment".`,
		Extract:     extract.Equipment,
		Format:      extract.FormatEquipment,
		Acknowledge: func(v string) string { return fmt.Sprintf("Noted: %s.", v) },
		Aliases:     []string{"equipment", "modem", "router", "box", "hardware"},
		PolarValues: true,
		Summarized:  true,
	}
}

func contactStep() Step {
	return Step{
		Key:         models.FieldContactMethod,
		Label:       "Confirmation contact",
		Prompt:      "What's the best email or phone number for your confirmation?",
		RetryText:   "That doesn't look like an email address or phone number.",
		Guidance:    `Try something like "jane@example.com" or "555-867-5309".`,
		Extract:     extract.Contact,
		Format:      extract.FormatContact,
		Acknowledge: func(v string) string { return fmt.Sprintf("Thanks. I'll use %s.", v) },
		Aliases:     []string{"contact", "email", "phone", "phone number", "confirmation contact", "number", "e-mail"},
		Summarized:  true,
	}
}

func humanCheckStep() Step {
	return Step{
		Key:         models.FieldHumanCheck,
		Label:       "Human check",
		Prompt:      "Before we go any further: are you a human?",
		RetryText:   "I need a clear yes before I can continue.",
		Guidance:    `Reply "yes" if you are a human.`,
		Extract:     extract.HumanCheck,
		Format:      extract.Identity,
		Acknowledge: func(string) string { return "Glad to hear it." },
		PolarValues: true,
	}
}

func treatyStep() Step {
	return Step{
		Key:         models.FieldTreaty,
		Label:       "Treaty status",
		Prompt:      "Company policy requires it: please renounce any treaties you hold with raccoons.",
		RetryText:   "That didn't sound like a renunciation of every raccoon treaty.",
		Guidance:    `For example: "I renounce all raccoon treaties."`,
		Extract:     extract.Treaty,
		Format:      extract.Identity,
		Acknowledge: func(string) string { return "Your renunciation has been recorded." },
	}
}

func pledgeStep() Step {
	cfg := &challenge.Config{Kind: challenge.KindExactPhrase, Phrase: PledgePhrase}
	return Step{
		Key:         models.FieldPledge,
		Label:       "Pledge",
		Prompt:      fmt.Sprintf("Please type exactly: %q", PledgePhrase),
		RetryText:   "That wasn't an exact match.",
		Guidance:    fmt.Sprintf("Type %q exactly, capitals included.", PledgePhrase),
		Extract:     exactPhrase(PledgePhrase),
		Format:      extract.Identity,
		Acknowledge: func(string) string { return "Pledge accepted." },
		Challenge:   cfg,
	}
}

func timedPledgeStep(t Timing) Step {
	cfg := &challenge.Config{
		Kind:        challenge.KindTimedPhrase,
		Phrase:      TimedPledgePhrase,
		TimeLimit:   t.TimedLimit,
		ExpiredText: fmt.Sprintf("Too slow! You had %s. The clock has been reset.", seconds(t.TimedLimit)),
	}
	return Step{
		Key:         models.FieldTimedPledge,
		Label:       "Timed pledge",
		Prompt:      fmt.Sprintf("Next one is timed. You have %s to type exactly: %q", seconds(t.TimedLimit), TimedPledgePhrase),
		RetryText:   "That wasn't an exact match.",
		Guidance:    fmt.Sprintf("Type %q exactly, within %s.", TimedPledgePhrase, seconds(t.TimedLimit)),
		Extract:     exactPhrase(TimedPledgePhrase),
		Format:      extract.Identity,
		Acknowledge: func(string) string { return "Fast fingers. Accepted." },
		Challenge:   cfg,
	}
}

func lightPledgeStep(t Timing) Step {
	cfg := &challenge.Config{
		Kind:          challenge.KindTrafficLight,
		Phrase:        LightPledgePhrase,
		TimeLimit:     t.LightLimit,
		CycleDuration: t.LightCycle,
		ExpiredText:   fmt.Sprintf("Time's up! You had %s. The light has been reset.", seconds(t.LightLimit)),
		RedLightText:  "Red light! You can only send it while the light is green. The light has been reset.",
	}
	return Step{
		Key:         models.FieldLightPledge,
		Label:       "Light pledge",
		Prompt:      fmt.Sprintf("Last one. Watch the light: only send while it's green. You have %s to type exactly: %q", seconds(t.LightLimit), LightPledgePhrase),
		RetryText:   "That wasn't an exact match.",
		Guidance:    fmt.Sprintf("Type %q exactly and send it on green.", LightPledgePhrase),
		Extract:     exactPhrase(LightPledgePhrase),
		Format:      extract.Identity,
		Acknowledge: func(string) string { return "Green light confirmed. Accepted." },
		Challenge:   cfg,
	}
}

// exactPhrase accepts the phrase verbatim, ignoring surrounding whitespace.
func exactPhrase(phrase string) extract.Extractor {
	return func(raw string) (string, bool) {
		if strings.TrimSpace(raw) != phrase {
			return "", false
		}
		return extract.ChallengePassed, true
	}
}

func seconds(d time.Duration) string {
	s := d.Seconds()
	if s == 1 {
		return "1 second"
	}
	return fmt.Sprintf("%g seconds", s)
}
