// Package typing staggers agent replies so they arrive like a person typing.
//
// Each message is held for a duration proportional to its length, clamped
// between a minimum and maximum, with a fixed gap between consecutive
// messages. Delivery order always matches scheduling order, and Flush
// delivers everything still pending at once.
package typing

import (
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/timer"
)

// Sink receives delivered messages.
type Sink interface {
	Append(msg models.Message)
}

// Config controls the simulated typing speed.
type Config struct {
	PerChar time.Duration
	Min     time.Duration
	Max     time.Duration
	Gap     time.Duration
}

// DefaultConfig returns the stock typing speed.
func DefaultConfig() Config {
	return Config{
		PerChar: 28 * time.Millisecond,
		Min:     450 * time.Millisecond,
		Max:     2200 * time.Millisecond,
		Gap:     350 * time.Millisecond,
	}
}

// TypingDuration is how long text takes to "type": PerChar per character,
// clamped to [Min, Max].
func (c Config) TypingDuration(text string) time.Duration {
	d := time.Duration(utf8.RuneCountInString(text)) * c.PerChar
	if d < c.Min {
		d = c.Min
	}
	if c.Max > 0 && d > c.Max {
		d = c.Max
	}
	return d
}

type scheduledReply struct {
	msg     models.Message
	due     time.Time
	timerID string
}

// Scheduler delivers agent replies to a Sink with staggered delays.
type Scheduler struct {
	mu          sync.Mutex
	timer       timer.Timer
	sink        Sink
	cfg         Config
	queue       []*scheduledReply
	onComposing func(bool)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConfig sets the typing speed.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) { s.cfg = cfg }
}

// WithComposingHook is called with true when the queue becomes non-empty and
// with false the moment it drains. It runs without scheduler locks held.
func WithComposingHook(fn func(composing bool)) Option {
	return func(s *Scheduler) { s.onComposing = fn }
}

// NewScheduler creates a Scheduler delivering to sink.
func NewScheduler(t timer.Timer, sink Sink, opts ...Option) *Scheduler {
	s := &Scheduler{timer: t, sink: sink, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues replies behind anything already pending and returns the
// delay until the last of them is delivered.
func (s *Scheduler) Schedule(replies []models.Message) time.Duration {
	if len(replies) == 0 {
		return s.Pending()
	}

	s.mu.Lock()
	now := s.timer.Now()
	wasIdle := len(s.queue) == 0
	cursor := now
	if !wasIdle {
		cursor = s.queue[len(s.queue)-1].due.Add(s.cfg.Gap)
	}

	failed := false
	for i, msg := range replies {
		if i > 0 {
			cursor = cursor.Add(s.cfg.Gap)
		}
		cursor = cursor.Add(s.cfg.TypingDuration(msg.Text))
		entry := &scheduledReply{msg: msg, due: cursor}
		id, err := s.timer.ScheduleAfter(cursor.Sub(now), func() { s.deliverThrough(entry) })
		if err != nil {
			slog.Error("Scheduler.Schedule: timer failed, delivering immediately", "error", err)
			failed = true
		}
		entry.timerID = id
		s.queue = append(s.queue, entry)
	}
	total := cursor.Sub(now)
	hook := s.onComposing
	s.mu.Unlock()

	slog.Debug("Scheduler.Schedule: replies queued", "count", len(replies), "delay", total)
	if wasIdle && hook != nil {
		hook(true)
	}
	if failed {
		s.Flush()
		return 0
	}
	return total
}

// deliverThrough delivers every queued reply up to and including entry.
func (s *Scheduler) deliverThrough(entry *scheduledReply) {
	s.mu.Lock()
	idx := -1
	for i, e := range s.queue {
		if e == entry {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	for _, e := range s.queue[:idx+1] {
		if e != entry {
			s.cancel(e)
		}
		s.sink.Append(e.msg)
	}
	s.queue = s.queue[idx+1:]
	drained := len(s.queue) == 0
	hook := s.onComposing
	s.mu.Unlock()

	if drained && hook != nil {
		hook(false)
	}
}

// Flush cancels every pending delay and delivers the remaining replies in order.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	for _, e := range s.queue {
		s.cancel(e)
		s.sink.Append(e.msg)
	}
	slog.Debug("Scheduler.Flush: delivered pending replies", "count", len(s.queue))
	s.queue = nil
	hook := s.onComposing
	s.mu.Unlock()

	if hook != nil {
		hook(false)
	}
}

// Composing reports whether any reply is still pending.
func (s *Scheduler) Composing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0
}

// Pending returns the delay until the last queued reply is delivered.
func (s *Scheduler) Pending() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return 0
	}
	return max(s.queue[len(s.queue)-1].due.Sub(s.timer.Now()), 0)
}

func (s *Scheduler) cancel(e *scheduledReply) {
	if e.timerID == "" {
		return
	}
	if err := s.timer.Cancel(e.timerID); err != nil {
		slog.Warn("Scheduler.cancel: cancel failed", "id", e.timerID, "error", err)
	}
}
