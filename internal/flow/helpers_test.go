package flow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/timer"
)

var epoch = time.Date(2026, time.October, 15, 14, 30, 0, 0, time.UTC)

// harness drives a flow on a virtual clock. Every send advances the clock
// until the replies are delivered and any challenge is armed.
type harness struct {
	t     *testing.T
	flow  *CancellationFlow
	clock *timer.ManualTimer
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clock := timer.NewManualTimer(epoch)
	n := 0
	ids := WithChallengeIDs(func() string {
		n++
		return fmt.Sprintf("challenge-%d", n)
	})
	f := NewCancellationFlow(append([]Option{WithTimer(clock), ids}, opts...)...)
	h := &harness{t: t, flow: f, clock: clock}
	h.clock.Advance(f.Start() + DefaultRearmDelay)
	t.Cleanup(f.Close)
	return h
}

// submit sends an input and returns the agent replies it produced.
func (h *harness) submit(in Input) []string {
	h.t.Helper()
	before := h.flow.Transcript().Len()
	delay := h.flow.Submit(context.Background(), in)
	h.clock.Advance(delay + DefaultRearmDelay)

	msgs := h.flow.Transcript().Messages()[before:]
	if len(msgs) == 0 || msgs[0].Role != models.RoleUser {
		h.t.Fatalf("submit(%q): transcript did not record the user message: %v", in.Text, msgs)
	}
	var out []string
	for _, m := range msgs[1:] {
		out = append(out, m.Text)
	}
	return out
}

func (h *harness) send(text string) []string {
	h.t.Helper()
	return h.submit(Input{Text: text})
}

func (h *harness) expectState(want models.StateType) {
	h.t.Helper()
	if got := h.flow.State(); got != want {
		h.t.Fatalf("state = %q, want %q", got, want)
	}
}

// reachSummary answers the plain script with valid values.
func (h *harness) reachSummary() string {
	h.t.Helper()
	h.send("Jane McAllister")
	h.send("internet")
	h.send("It's too expensive")
	h.send("yes")
	h.send("tomorrow")
	h.send("no")
	replies := h.send("jane@example.com")
	h.expectState(models.StateConfirmSummary)
	if len(replies) < 2 {
		h.t.Fatalf("expected summary replies, got %q", replies)
	}
	return replies[len(replies)-2]
}
