package script

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/CancelPipe/internal/models"
)

// Fixed conversation texts.
const (
	Greeting       = "Hi, I can help you cancel your service. I'll ask a few quick questions."
	ConfirmPrompt  = `Does everything look correct? Reply "yes" to submit, or tell me what to change.`
	ClosedMessage  = "This chat is closed. Your cancellation request has already been submitted."
	NotProvided    = "(not provided)"
	summaryHeading = "Here's what I have so far:"
)

// Summary renders the captured summarized fields in script order. It is a
// pure function of captured, so the same data always renders identically.
func (s *Script) Summary(captured map[models.FieldKey]string) string {
	var b strings.Builder
	b.WriteString(summaryHeading)
	for _, st := range s.steps {
		if !st.Summarized {
			continue
		}
		value, ok := captured[st.Key]
		if !ok || value == "" {
			value = NotProvided
		}
		fmt.Fprintf(&b, "\n- %s: %s", st.Label, value)
	}
	return b.String()
}

// ReasonConfirmPrompt asks the user to ratify a reason categorization.
func ReasonConfirmPrompt(category string) string {
	return fmt.Sprintf("It sounds like your main reason is: %s. Is that right? (yes/no)", category)
}

// ReasonClarify re-asks for a yes/no on the reason categorization.
func ReasonClarify(category string) string {
	return fmt.Sprintf(`Sorry, I need a "yes" or "no". Should I record your reason as: %s?`, category)
}

// Reason ratification replies.
const (
	ReasonRecorded = "Thanks, I've recorded that."
	ReasonRetry    = "No problem, let's try that again."
)

// UpdatedMessage acknowledges a corrected field.
func UpdatedMessage(st Step) string {
	return fmt.Sprintf("Done, I've updated the %s.", lowerLabel(st.Label))
}

// MismatchMessage is sent in hard mode when a value differs from the account on file.
func MismatchMessage(st Step) string {
	return fmt.Sprintf("That doesn't match the %s we have on file for this account. Please check and try again.", lowerLabel(st.Label))
}

// CorrectionInputPrompt asks for a new value for st.
func CorrectionInputPrompt(st Step) string {
	return fmt.Sprintf("Sure. What should the %s be?", lowerLabel(st.Label))
}

// CorrectionSelectPrompt asks which field to change.
func (s *Script) CorrectionSelectPrompt() string {
	return "No problem. " + s.changeOptions()
}

// CorrectionClarify is sent when no field could be recognized.
func (s *Script) CorrectionClarify() string {
	return "Sorry, I didn't catch which detail to change. " + s.changeOptions()
}

func (s *Script) changeOptions() string {
	var labels []string
	for _, st := range s.Summarized() {
		labels = append(labels, lowerLabel(st.Label))
	}
	return "What would you like to change? You can say " + joinOr(labels) + "."
}

// ConfirmClarify re-asks the summary question.
const ConfirmClarify = `Sorry, I didn't follow. Reply "yes" to submit, or tell me which detail to change.`

// Minigame texts.
const (
	PongIntro    = "Last step! To prove you're a real customer, beat our agent at a quick game of pong. First to 3 wins."
	PongReminder = "Please finish the pong game to submit your request. Typing won't help here!"
	PongLost     = "The agent won that round, so I have to start your request over from the beginning. Sorry!"
	PongWon      = "You won! Your cancellation request has been submitted. You'll receive a confirmation shortly."
)

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
}
