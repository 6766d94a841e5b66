package challenge

import (
	"fmt"
	"testing"
	"time"

	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/timer"
)

var epoch = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

const field = models.FieldPledge

var (
	exact = Config{Kind: KindExactPhrase, Phrase: "I am not a raccoon"}
	timed = Config{Kind: KindTimedPhrase, Phrase: "Raccoons have no power here", TimeLimit: 10 * time.Second}
	light = Config{Kind: KindTrafficLight, Phrase: "Trash pandas stay outside", TimeLimit: 20 * time.Second, CycleDuration: 1500 * time.Millisecond}
)

func newTestEngine(opts ...Option) (*Engine, *timer.ManualTimer) {
	clock := timer.NewManualTimer(epoch)
	n := 0
	ids := WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	})
	return NewEngine(clock, append([]Option{ids}, opts...)...), clock
}

func TestExactPhrase(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason Reason
	}{
		{"exact", "I am not a raccoon", ReasonNone},
		{"surrounding whitespace", "  I am not a raccoon \n", ReasonNone},
		{"lower case", "i am not a raccoon", ReasonMismatch},
		{"trailing period", "I am not a raccoon.", ReasonMismatch},
		{"missing letter", "I am not a racoon", ReasonMismatch},
		{"empty", "", ReasonMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine()
			e.Arm(field, exact)
			got := e.Evaluate(field, tt.input)
			if got.Reason != tt.reason || got.Passed != (tt.reason == ReasonNone) {
				t.Errorf("Evaluate(%q) = %+v, want reason %q", tt.input, got, tt.reason)
			}
		})
	}
}

func TestExactPhraseHasNoDeadline(t *testing.T) {
	e, clock := newTestEngine()
	e.Arm(field, exact)
	clock.Advance(time.Hour)
	if got := e.Evaluate(field, exact.Phrase); !got.Passed {
		t.Errorf("Evaluate() after an hour = %+v, want pass", got)
	}
}

func TestTimedPhraseDeadline(t *testing.T) {
	t.Run("at the limit passes", func(t *testing.T) {
		e, clock := newTestEngine()
		e.Arm(field, timed)
		clock.Advance(timed.TimeLimit)
		if got := e.Evaluate(field, timed.Phrase); !got.Passed {
			t.Errorf("Evaluate() = %+v, want pass", got)
		}
	})

	t.Run("one millisecond over fails", func(t *testing.T) {
		e, clock := newTestEngine()
		e.Arm(field, timed)
		clock.Advance(timed.TimeLimit + time.Millisecond)
		got := e.Evaluate(field, timed.Phrase)
		if got.Passed || got.Reason != ReasonExpired || got.Message != DefaultExpiredText {
			t.Errorf("Evaluate() = %+v, want expired with default text", got)
		}
	})

	t.Run("custom expiry text", func(t *testing.T) {
		cfg := timed
		cfg.ExpiredText = "Out of time."
		e, clock := newTestEngine()
		e.Arm(field, cfg)
		clock.Advance(11 * time.Second)
		if got := e.Evaluate(field, cfg.Phrase); got.Message != "Out of time." {
			t.Errorf("Evaluate().Message = %q, want custom text", got.Message)
		}
	})
}

func TestTrafficLight(t *testing.T) {
	e, clock := newTestEngine()
	e.Arm(field, light)

	if got := e.Status().Light; got != LightGreen {
		t.Fatalf("initial light = %q, want green", got)
	}

	clock.Advance(light.CycleDuration)
	if got := e.Status().Light; got != LightRed {
		t.Fatalf("light after one cycle = %q, want red", got)
	}

	got := e.Evaluate(field, light.Phrase)
	if got.Passed || got.Reason != ReasonRedLight || got.Message != DefaultRedLightText {
		t.Fatalf("Evaluate() on red = %+v, want red-light rejection", got)
	}

	// A fresh instance starts green again; a red flip then back to green passes.
	e.Arm(field, light)
	clock.Advance(light.CycleDuration)
	if e.Status().Light != LightRed {
		t.Fatal("expected red after first cycle")
	}
	clock.Advance(light.CycleDuration)
	if e.Status().Light != LightGreen {
		t.Fatal("expected green after second cycle")
	}
	if got := e.Evaluate(field, light.Phrase); !got.Passed {
		t.Errorf("Evaluate() right after green = %+v, want pass", got)
	}
}

func TestTrafficLightExpiryBeatsLight(t *testing.T) {
	e, clock := newTestEngine()
	e.Arm(field, light)
	// 21s is 14 cycles, so the light is green again but time is up.
	clock.Advance(21 * time.Second)
	if e.Status().Light != LightGreen {
		t.Fatalf("light = %q, want green", e.Status().Light)
	}
	if got := e.Evaluate(field, light.Phrase); got.Reason != ReasonExpired {
		t.Errorf("Evaluate() = %+v, want expired", got)
	}
}

func TestLightStopsCyclingWhenDestroyed(t *testing.T) {
	e, clock := newTestEngine()
	e.Arm(field, light)
	e.Clear()
	if clock.Pending() != 0 {
		t.Errorf("Pending() after Clear = %d, want 0", clock.Pending())
	}
	clock.Advance(time.Minute)
	if st := e.Status(); st.Active || st.Light != LightNone {
		t.Errorf("Status() after Clear = %+v, want inactive", st)
	}
}

func TestPasteProvenance(t *testing.T) {
	e, clock := newTestEngine()
	first := e.Arm(field, exact)

	e.RecordPaste(first)
	got := e.Evaluate(field, exact.Phrase)
	if got.Reason != ReasonPaste || got.Message != DefaultPasteText {
		t.Fatalf("pasted Evaluate() = %+v, want paste rejection", got)
	}

	e.ArmAfter(field, exact, 500*time.Millisecond)
	clock.Advance(500 * time.Millisecond)
	second := e.ActiveID()
	if second == "" || second == first {
		t.Fatalf("ActiveID() = %q after re-arm, want a new token", second)
	}
	if got := e.Evaluate(field, exact.Phrase); !got.Passed {
		t.Errorf("typed Evaluate() = %+v, want pass", got)
	}
}

func TestPasteFromStaleInstanceIsConsumedHarmlessly(t *testing.T) {
	e, _ := newTestEngine()
	old := e.Arm(field, exact)
	e.Arm(field, exact)

	e.RecordPaste(old)
	if got := e.Evaluate(field, exact.Phrase); !got.Passed {
		t.Errorf("Evaluate() with stale paste = %+v, want pass", got)
	}
}

func TestPasteDefaultsToActiveInstance(t *testing.T) {
	e, _ := newTestEngine()
	e.Arm(field, exact)
	e.RecordPaste("")
	if got := e.Evaluate(field, exact.Phrase); got.Reason != ReasonPaste {
		t.Errorf("Evaluate() = %+v, want paste rejection", got)
	}
}

func TestPasteCheckedBeforeExpiry(t *testing.T) {
	e, clock := newTestEngine()
	e.Arm(field, timed)
	e.RecordPaste("")
	clock.Advance(time.Minute)
	if got := e.Evaluate(field, "wrong"); got.Reason != ReasonPaste {
		t.Errorf("Evaluate() = %+v, want paste first", got)
	}
}

func TestArmAfterPendingAndSupersede(t *testing.T) {
	e, clock := newTestEngine()
	e.ArmAfter(field, exact, time.Second)

	st := e.Status()
	if st.Active || !st.Pending || st.Field != field {
		t.Fatalf("Status() while pending = %+v", st)
	}
	if got := e.Evaluate(field, exact.Phrase); got.Reason != ReasonInactive || got.Message != ResettingText {
		t.Fatalf("Evaluate() while pending = %+v, want inactive", got)
	}

	// A second ArmAfter supersedes the first; the first timer must not arm.
	e.ArmAfter(models.FieldTimedPledge, timed, 2*time.Second)
	clock.Advance(time.Second)
	if e.Status().Active {
		t.Fatal("superseded arm fired")
	}
	clock.Advance(time.Second)
	st = e.Status()
	if !st.Active || st.Field != models.FieldTimedPledge {
		t.Fatalf("Status() after second arm = %+v", st)
	}
	if st.Remaining != timed.TimeLimit {
		t.Errorf("Remaining = %v, want %v at arm time", st.Remaining, timed.TimeLimit)
	}
}

func TestEvaluateWrongField(t *testing.T) {
	e, _ := newTestEngine()
	id := e.Arm(field, exact)
	if got := e.Evaluate(models.FieldLightPledge, exact.Phrase); got.Reason != ReasonInactive {
		t.Errorf("Evaluate(other field) = %+v, want inactive", got)
	}
	if e.ActiveID() != id {
		t.Error("evaluating another field destroyed the active instance")
	}
}

func TestCountdownListener(t *testing.T) {
	var statuses []Status
	e, clock := newTestEngine(
		WithTickInterval(time.Second),
		WithListener(func(s Status) { statuses = append(statuses, s) }),
	)
	e.Arm(field, timed)
	clock.Advance(15 * time.Second)

	// One notification for arming, then one per second until zero.
	if len(statuses) != 11 {
		t.Fatalf("got %d statuses, want 11", len(statuses))
	}
	if first := statuses[0]; !first.Active || first.Remaining != 10*time.Second {
		t.Errorf("first status = %+v", first)
	}
	if last := statuses[len(statuses)-1]; last.Remaining != 0 {
		t.Errorf("last status Remaining = %v, want 0", last.Remaining)
	}
	if clock.Pending() != 0 {
		t.Errorf("ticks still scheduled after zero: %d", clock.Pending())
	}
}

func TestRemaining(t *testing.T) {
	e, clock := newTestEngine()
	if e.Remaining() != 0 {
		t.Errorf("Remaining() idle = %v, want 0", e.Remaining())
	}
	e.Arm(field, timed)
	clock.Advance(3500 * time.Millisecond)
	if got := e.Remaining(); got != 6500*time.Millisecond {
		t.Errorf("Remaining() = %v, want 6.5s", got)
	}
	clock.Advance(time.Minute)
	if got := e.Remaining(); got != 0 {
		t.Errorf("Remaining() after deadline = %v, want 0", got)
	}
}
