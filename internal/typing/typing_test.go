package typing

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/timer"
)

var epoch = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu   sync.Mutex
	msgs []models.Message
}

func (r *recordingSink) Append(msg models.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSink) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Text
	}
	return out
}

var testConfig = Config{
	PerChar: 10 * time.Millisecond,
	Min:     100 * time.Millisecond,
	Max:     1000 * time.Millisecond,
	Gap:     50 * time.Millisecond,
}

func agent(texts ...string) []models.Message {
	out := make([]models.Message, len(texts))
	for i, t := range texts {
		out[i] = models.AgentMessage(t)
	}
	return out
}

func TestTypingDuration(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Duration
	}{
		{"short clamps to min", "hi", 100 * time.Millisecond},
		{"proportional", strings.Repeat("a", 30), 300 * time.Millisecond},
		{"long clamps to max", strings.Repeat("a", 500), time.Second},
		{"counts runes", strings.Repeat("é", 20), 200 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testConfig.TypingDuration(tt.text); got != tt.want {
				t.Errorf("TypingDuration(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}

	if got := DefaultConfig().TypingDuration(strings.Repeat("x", 400)); got != 2200*time.Millisecond {
		t.Errorf("default max = %v, want 2.2s", got)
	}
}

func TestScheduleStaggersInOrder(t *testing.T) {
	clock := timer.NewManualTimer(epoch)
	sink := &recordingSink{}
	s := NewScheduler(clock, sink, WithConfig(testConfig))

	// 100ms, then 50ms gap + 300ms, then 50ms gap + 100ms.
	total := s.Schedule(agent("one", strings.Repeat("b", 30), "three"))
	if want := 600 * time.Millisecond; total != want {
		t.Fatalf("Schedule() = %v, want %v", total, want)
	}
	if !s.Composing() {
		t.Fatal("Composing() = false with pending replies")
	}

	steps := []struct {
		advance time.Duration
		want    []string
	}{
		{99 * time.Millisecond, []string{}},
		{time.Millisecond, []string{"one"}},
		{349 * time.Millisecond, []string{"one"}},
		{time.Millisecond, []string{"one", strings.Repeat("b", 30)}},
		{150 * time.Millisecond, []string{"one", strings.Repeat("b", 30), "three"}},
	}
	for i, step := range steps {
		clock.Advance(step.advance)
		if diff := cmp.Diff(step.want, sink.texts()); diff != "" {
			t.Fatalf("step %d delivered mismatch (-want +got):\n%s", i, diff)
		}
	}
	if s.Composing() {
		t.Error("Composing() = true after all replies delivered")
	}
}

func TestScheduleAppendsBehindPending(t *testing.T) {
	clock := timer.NewManualTimer(epoch)
	sink := &recordingSink{}
	s := NewScheduler(clock, sink, WithConfig(testConfig))

	s.Schedule(agent("first"))
	clock.Advance(40 * time.Millisecond)
	total := s.Schedule(agent("second"))
	// first due at 100ms; second at 100 + 50 + 100 = 250ms, i.e. 210ms from now.
	if want := 210 * time.Millisecond; total != want {
		t.Errorf("Schedule() = %v, want %v", total, want)
	}
	clock.Advance(time.Second)
	if diff := cmp.Diff([]string{"first", "second"}, sink.texts()); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}

func TestFlushDeliversRemainingInOrder(t *testing.T) {
	clock := timer.NewManualTimer(epoch)
	sink := &recordingSink{}
	var hooks []bool
	s := NewScheduler(clock, sink, WithConfig(testConfig), WithComposingHook(func(c bool) { hooks = append(hooks, c) }))

	s.Schedule(agent("a", "b", "c"))
	clock.Advance(100 * time.Millisecond)
	s.Flush()

	if diff := cmp.Diff([]string{"a", "b", "c"}, sink.texts()); diff != "" {
		t.Fatalf("Flush() delivery mismatch (-want +got):\n%s", diff)
	}
	if clock.Pending() != 0 {
		t.Errorf("timers left after Flush: %d", clock.Pending())
	}
	if s.Pending() != 0 || s.Composing() {
		t.Error("scheduler still pending after Flush")
	}

	// Nothing is delivered twice once the old deadlines pass.
	clock.Advance(time.Second)
	if got := len(sink.texts()); got != 3 {
		t.Errorf("delivered %d messages, want 3", got)
	}
	if diff := cmp.Diff([]bool{true, false}, hooks); diff != "" {
		t.Errorf("composing hook calls mismatch (-want +got):\n%s", diff)
	}

	s.Flush()
	if diff := cmp.Diff([]bool{true, false}, hooks); diff != "" {
		t.Errorf("empty Flush() called the hook (-want +got):\n%s", diff)
	}
}

func TestScheduleEmpty(t *testing.T) {
	clock := timer.NewManualTimer(epoch)
	s := NewScheduler(clock, &recordingSink{}, WithConfig(testConfig))
	if got := s.Schedule(nil); got != 0 {
		t.Errorf("Schedule(nil) = %v, want 0", got)
	}
	if s.Composing() {
		t.Error("Composing() after empty schedule")
	}
}

func TestSchedulerWithWallClock(t *testing.T) {
	clock := timer.NewSimpleTimer()
	defer clock.Stop()
	sink := &recordingSink{}
	done := make(chan struct{})
	s := NewScheduler(clock, sink,
		WithConfig(Config{PerChar: time.Millisecond, Min: 5 * time.Millisecond, Max: 20 * time.Millisecond, Gap: time.Millisecond}),
		WithComposingHook(func(c bool) {
			if !c {
				close(done)
			}
		}))

	s.Schedule(agent("x", "y", "z"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replies were not delivered")
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, sink.texts()); diff != "" {
		t.Errorf("delivery mismatch (-want +got):\n%s", diff)
	}
}
