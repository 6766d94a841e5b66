package flow

import (
	"log/slog"

	"github.com/BTreeMap/CancelPipe/internal/challenge"
	"github.com/BTreeMap/CancelPipe/internal/match"
	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/script"
)

// turn collects the agent replies produced by one event and the gated step,
// if any, whose challenge should be armed after they are delivered.
type turn struct {
	replies []models.Message
	arm     *script.Step
}

func (t *turn) say(texts ...string) {
	for _, text := range texts {
		t.replies = append(t.replies, models.AgentMessage(text))
	}
}

func (f *CancellationFlow) dispatch(text string) turn {
	var t turn
	switch f.state {
	case models.StateCollecting:
		f.handleCollecting(&t, text)
	case models.StateReasonConfirm:
		f.handleReasonConfirm(&t, text)
	case models.StateConfirmSummary:
		f.handleConfirmSummary(&t, text)
	case models.StateCorrectionSelect:
		f.handleCorrectionSelect(&t, text)
	case models.StateCorrectionInput:
		f.handleCorrectionInput(&t, text)
	case models.StatePongPending, models.StatePong:
		t.say(script.PongReminder)
	case models.StateCompleted:
		t.say(script.ClosedMessage)
	default:
		slog.Error("CancellationFlow.dispatch: unknown state", "state", f.state)
	}
	return t
}

// promptStep asks the current step's question and arms its challenge.
func (f *CancellationFlow) promptStep(t *turn) {
	st := f.script.Step(f.step)
	t.say(st.Prompt)
	if st.Gated() {
		t.arm = &st
	}
}

// reprompt answers a failed attempt at the current step.
func (f *CancellationFlow) reprompt(t *turn, st script.Step, lead string) {
	t.say(lead, st.Prompt)
	if st.Gated() {
		t.arm = &st
	}
}

// advance moves to the next uncaptured step, or to the summary when none is left.
func (f *CancellationFlow) advance(t *turn) {
	next := f.script.NextUncaptured(f.step+1, f.captured)
	if next >= f.script.Len() {
		// Earlier fields can be missing after a rewind.
		next = f.script.NextUncaptured(0, f.captured)
	}
	if next < f.script.Len() {
		f.step = next
		f.setState(models.StateCollecting)
		f.promptStep(t)
		return
	}
	f.step = f.script.Len() - 1
	f.showSummary(t)
}

func (f *CancellationFlow) showSummary(t *turn) {
	t.say(f.script.Summary(f.captured), script.ConfirmPrompt)
	f.pendingField = ""
	f.setState(models.StateConfirmSummary)
}

// mismatches reports a hard-mode disagreement with the account on file.
func (f *CancellationFlow) mismatches(key models.FieldKey, value string) bool {
	return f.hardMode && f.scenario != nil && !f.scenario.Matches(key, value)
}

func (f *CancellationFlow) handleCollecting(t *turn, text string) {
	st := f.script.Step(f.step)

	if st.Gated() {
		if !f.passChallenge(t, st, text) {
			return
		}
	}

	value, ok := st.Capture(text)
	if !ok {
		f.reprompt(t, st, st.Retry())
		return
	}

	if st.Key == models.FieldReason {
		f.reasonCandidate = value
		f.reasonFollowUp = false
		t.say(st.Acknowledge(value))
		f.setState(models.StateReasonConfirm)
		return
	}

	if f.mismatches(st.Key, value) {
		slog.Debug("CancellationFlow.handleCollecting: hard-mode mismatch", "field", st.Key)
		f.reprompt(t, st, script.MismatchMessage(st))
		return
	}

	f.captured[st.Key] = value
	t.say(st.Acknowledge(value))
	f.advance(t)
}

// passChallenge evaluates a gated submission and answers failures. It reports
// whether the step may proceed to extraction.
func (f *CancellationFlow) passChallenge(t *turn, st script.Step, text string) bool {
	verdict := f.challenges.Evaluate(st.Key, text)
	switch {
	case verdict.Passed:
		return true
	case verdict.Reason == challenge.ReasonInactive:
		t.say(verdict.Message)
		if !f.challenges.Status().Pending {
			t.arm = &st
		}
	case verdict.Reason == challenge.ReasonMismatch:
		f.reprompt(t, st, st.Retry())
	default:
		f.reprompt(t, st, verdict.Message)
	}
	slog.Debug("CancellationFlow.passChallenge: rejected", "field", st.Key, "reason", verdict.Reason)
	return false
}

func (f *CancellationFlow) handleReasonConfirm(t *turn, text string) {
	reasonStep, _ := f.script.Lookup(models.FieldReason)

	switch match.ClassifyYesNo(text) {
	case match.Yes:
		if f.mismatches(models.FieldReason, f.reasonCandidate) {
			slog.Debug("CancellationFlow.handleReasonConfirm: hard-mode mismatch at ratification")
			f.rewindReason()
			t.say(script.MismatchMessage(reasonStep), reasonStep.Prompt)
			return
		}
		f.captured[models.FieldReason] = f.reasonCandidate
		followUp := f.reasonFollowUp
		f.reasonCandidate = ""
		f.reasonFollowUp = false
		if followUp {
			t.say(script.UpdatedMessage(reasonStep))
			f.showSummary(t)
			return
		}
		t.say(script.ReasonRecorded)
		f.step = f.script.IndexOf(models.FieldReason)
		f.advance(t)
	case match.No:
		f.rewindReason()
		t.say(script.ReasonRetry, reasonStep.Prompt)
	default:
		t.say(script.ReasonClarify(f.reasonCandidate))
	}
}

// rewindReason discards the reason and its pending ratification and returns
// to collecting at the reason step.
func (f *CancellationFlow) rewindReason() {
	delete(f.captured, models.FieldReason)
	f.reasonCandidate = ""
	f.reasonFollowUp = false
	f.pendingField = ""
	f.step = f.script.IndexOf(models.FieldReason)
	f.setState(models.StateCollecting)
}

func (f *CancellationFlow) handleConfirmSummary(t *turn, text string) {
	if match.IsNoChange(text) {
		f.showSummary(t)
		return
	}
	if st, rest, ok := f.script.FindMention(text); ok {
		f.applyMention(t, st, rest)
		return
	}
	switch match.ClassifyYesNo(text) {
	case match.Yes:
		t.say(script.PongIntro)
		f.setState(models.StatePongPending)
	case match.No:
		t.say(f.script.CorrectionSelectPrompt())
		f.setState(models.StateCorrectionSelect)
	default:
		t.say(script.ConfirmClarify)
	}
}

func (f *CancellationFlow) handleCorrectionSelect(t *turn, text string) {
	if match.IsNoChange(text) {
		f.showSummary(t)
		return
	}
	st, rest, ok := f.script.FindMention(text)
	if !ok {
		t.say(f.script.CorrectionClarify())
		return
	}
	f.applyMention(t, st, rest)
}

func (f *CancellationFlow) handleCorrectionInput(t *turn, text string) {
	st, ok := f.script.Lookup(f.pendingField)
	if !ok {
		slog.Error("CancellationFlow.handleCorrectionInput: no pending field", "field", f.pendingField)
		f.showSummary(t)
		return
	}
	if match.IsNoChange(text) {
		f.showSummary(t)
		return
	}
	value, ok := st.Capture(text)
	if !ok {
		t.say(st.Retry(), script.CorrectionInputPrompt(st))
		return
	}
	f.commitCorrection(t, st, value)
}

// applyMention handles "change <field> [to <value>]". A remainder that is a
// bare yes or no on a field that does not take one comments on the current
// value: yes keeps it, no asks for a new one.
func (f *CancellationFlow) applyMention(t *turn, st script.Step, rest string) {
	if rest != "" && !st.PolarValues {
		switch match.ClassifyYesNo(rest) {
		case match.Yes:
			f.showSummary(t)
			return
		case match.No:
			rest = ""
		}
	}
	if rest == "" {
		f.awaitCorrection(t, st)
		return
	}
	value, ok := st.Capture(rest)
	if !ok {
		t.say(st.Retry())
		f.awaitCorrection(t, st)
		return
	}
	f.commitCorrection(t, st, value)
}

func (f *CancellationFlow) awaitCorrection(t *turn, st script.Step) {
	t.say(script.CorrectionInputPrompt(st))
	f.pendingField = st.Key
	f.setState(models.StateCorrectionInput)
}

// commitCorrection stores a corrected value. The reason detours through
// ratification first.
func (f *CancellationFlow) commitCorrection(t *turn, st script.Step, value string) {
	if st.Key == models.FieldReason {
		f.reasonCandidate = value
		f.reasonFollowUp = true
		f.pendingField = ""
		t.say(st.Acknowledge(value))
		f.setState(models.StateReasonConfirm)
		return
	}
	if f.mismatches(st.Key, value) {
		t.say(script.MismatchMessage(st))
		f.awaitCorrection(t, st)
		return
	}
	f.captured[st.Key] = value
	t.say(script.UpdatedMessage(st))
	f.showSummary(t)
}
