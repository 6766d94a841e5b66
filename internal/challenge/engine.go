package challenge

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/timer"
)

// DefaultTickInterval is how often countdown listeners are notified.
const DefaultTickInterval = 100 * time.Millisecond

type instance struct {
	id        string
	field     models.FieldKey
	cfg       Config
	startedAt time.Time
	light     Light
	cycleID   string
	tickID    string
}

type pendingArm struct {
	token   string
	field   models.FieldKey
	timerID string
}

// Engine owns the single active challenge instance. Stale timer callbacks are
// ignored by comparing instance tokens.
type Engine struct {
	mu       sync.Mutex
	timer    timer.Timer
	tick     time.Duration
	newID    func() string
	listener Listener

	active  *instance
	pending *pendingArm
	paste   *PasteEvent
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickInterval sets the countdown notification interval. Zero disables ticks.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// WithListener registers a status listener.
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithIDGenerator replaces the uuid instance-token generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// NewEngine creates an Engine scheduling on t.
func NewEngine(t timer.Timer, opts ...Option) *Engine {
	e := &Engine{
		timer: t,
		tick:  DefaultTickInterval,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetListener replaces the status listener.
func (e *Engine) SetListener(l Listener) {
	e.mu.Lock()
	e.listener = l
	e.mu.Unlock()
}

// Arm starts a fresh instance for field immediately, superseding any active
// or pending one. It returns the new instance token.
func (e *Engine) Arm(field models.FieldKey, cfg Config) string {
	e.mu.Lock()
	e.cancelLocked()
	inst := e.startLocked(field, cfg)
	status, l := e.statusLocked(), e.listener
	e.mu.Unlock()

	notify(l, status)
	return inst.id
}

// ArmAfter tears down any current instance and arms a fresh one for field
// after delay. A later Arm, ArmAfter or Clear supersedes the pending arm.
func (e *Engine) ArmAfter(field models.FieldKey, cfg Config, delay time.Duration) {
	e.mu.Lock()
	e.cancelLocked()
	token := e.newID()
	p := &pendingArm{token: token, field: field}
	e.pending = p
	id, err := e.timer.ScheduleAfter(delay, func() { e.fireArm(token, cfg) })
	if err != nil {
		slog.Error("Engine.ArmAfter: schedule failed, arming now", "field", field, "error", err)
		e.pending = nil
		e.startLocked(field, cfg)
	} else {
		p.timerID = id
	}
	status, l := e.statusLocked(), e.listener
	e.mu.Unlock()

	slog.Debug("Engine.ArmAfter: re-arm scheduled", "field", field, "delay", delay)
	notify(l, status)
}

func (e *Engine) fireArm(token string, cfg Config) {
	e.mu.Lock()
	if e.pending == nil || e.pending.token != token {
		e.mu.Unlock()
		slog.Debug("Engine.fireArm: stale arm ignored", "token", token)
		return
	}
	field := e.pending.field
	e.pending = nil
	e.startLocked(field, cfg)
	status, l := e.statusLocked(), e.listener
	e.mu.Unlock()

	notify(l, status)
}

// Clear destroys the active instance and any pending arm.
func (e *Engine) Clear() {
	e.mu.Lock()
	had := e.active != nil || e.pending != nil
	e.cancelLocked()
	status, l := e.statusLocked(), e.listener
	e.mu.Unlock()

	if had {
		notify(l, status)
	}
}

// RecordPaste notes that the input was pasted into while instanceID was
// active. An empty instanceID means the currently active instance.
func (e *Engine) RecordPaste(instanceID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ev := &PasteEvent{InstanceID: instanceID, At: e.timer.Now()}
	if e.active != nil {
		if ev.InstanceID == "" {
			ev.InstanceID = e.active.id
		}
		ev.Field = e.active.field
	}
	e.paste = ev
	slog.Debug("Engine.RecordPaste: paste recorded", "instanceID", ev.InstanceID, "field", ev.Field)
}

// Evaluate checks a submission for field against the active instance. Any
// unhandled paste event is consumed. A failed submission destroys the
// instance; callers re-arm it with ArmAfter. A pass destroys it as well.
func (e *Engine) Evaluate(field models.FieldKey, text string) Verdict {
	e.mu.Lock()
	now := e.timer.Now()

	pasted := false
	if e.paste != nil && !e.paste.Handled {
		e.paste.Handled = true
		pasted = e.active != nil && e.paste.InstanceID == e.active.id
	}

	inst := e.active
	if inst == nil || inst.field != field {
		e.mu.Unlock()
		slog.Debug("Engine.Evaluate: no live instance", "field", field)
		return Verdict{Reason: ReasonInactive, Message: ResettingText}
	}

	verdict := judge(inst, text, now, pasted)
	e.cancelLocked()
	status, l := e.statusLocked(), e.listener
	e.mu.Unlock()

	slog.Debug("Engine.Evaluate: verdict", "field", field, "instanceID", inst.id, "passed", verdict.Passed, "reason", verdict.Reason)
	notify(l, status)
	return verdict
}

// judge applies the checks in order: paste, expiry, light, phrase.
func judge(inst *instance, text string, now time.Time, pasted bool) Verdict {
	cfg := inst.cfg
	switch {
	case pasted:
		return Verdict{Reason: ReasonPaste, Message: cfg.pasteText()}
	case cfg.Timed() && now.Sub(inst.startedAt) > cfg.TimeLimit:
		return Verdict{Reason: ReasonExpired, Message: cfg.expiredText()}
	case cfg.Kind == KindTrafficLight && inst.light == LightRed:
		return Verdict{Reason: ReasonRedLight, Message: cfg.redLightText()}
	case strings.TrimSpace(text) != cfg.Phrase:
		return Verdict{Reason: ReasonMismatch}
	}
	return Verdict{Passed: true}
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

// ActiveID returns the active instance token, or "" when none is live.
func (e *Engine) ActiveID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ""
	}
	return e.active.id
}

// Remaining returns the countdown value of the active instance:
// max(0, startedAt + limit - now). It is zero for untimed challenges.
func (e *Engine) Remaining() time.Duration {
	return e.Status().Remaining
}

func (e *Engine) statusLocked() Status {
	if e.active == nil {
		st := Status{Light: LightNone, Pending: e.pending != nil}
		if e.pending != nil {
			st.Field = e.pending.field
		}
		return st
	}
	inst := e.active
	st := Status{
		Active:     true,
		InstanceID: inst.id,
		Field:      inst.field,
		Kind:       inst.cfg.Kind,
		Phrase:     inst.cfg.Phrase,
		Light:      inst.light,
		Timed:      inst.cfg.Timed(),
	}
	if st.Timed {
		st.TimeLimit = inst.cfg.TimeLimit
		st.Remaining = max(inst.startedAt.Add(inst.cfg.TimeLimit).Sub(e.timer.Now()), 0)
	}
	return st
}

func (e *Engine) startLocked(field models.FieldKey, cfg Config) *instance {
	inst := &instance{
		id:        e.newID(),
		field:     field,
		cfg:       cfg,
		startedAt: e.timer.Now(),
		light:     LightNone,
	}
	if cfg.Cycles() {
		inst.light = LightGreen
		inst.cycleID = e.scheduleLocked(cfg.CycleDuration, func() { e.flip(inst.id) })
	}
	if cfg.Timed() && e.tick > 0 && e.listener != nil {
		inst.tickID = e.scheduleLocked(e.tick, func() { e.countdown(inst.id) })
	}
	e.active = inst
	slog.Debug("Engine.startLocked: challenge armed", "field", field, "kind", cfg.Kind, "instanceID", inst.id)
	return inst
}

func (e *Engine) scheduleLocked(d time.Duration, fn func()) string {
	id, err := e.timer.ScheduleAfter(d, fn)
	if err != nil {
		slog.Error("Engine.scheduleLocked: schedule failed", "error", err)
		return ""
	}
	return id
}

func (e *Engine) flip(instanceID string) {
	e.mu.Lock()
	inst := e.active
	if inst == nil || inst.id != instanceID {
		e.mu.Unlock()
		return
	}
	if inst.light == LightGreen {
		inst.light = LightRed
	} else {
		inst.light = LightGreen
	}
	inst.cycleID = e.scheduleLocked(inst.cfg.CycleDuration, func() { e.flip(instanceID) })
	status, l := e.statusLocked(), e.listener
	e.mu.Unlock()

	notify(l, status)
}

func (e *Engine) countdown(instanceID string) {
	e.mu.Lock()
	inst := e.active
	if inst == nil || inst.id != instanceID {
		e.mu.Unlock()
		return
	}
	status, l := e.statusLocked(), e.listener
	inst.tickID = ""
	if status.Remaining > 0 {
		inst.tickID = e.scheduleLocked(e.tick, func() { e.countdown(instanceID) })
	}
	e.mu.Unlock()

	notify(l, status)
}

// cancelLocked destroys the active instance and pending arm and their timers.
func (e *Engine) cancelLocked() {
	if inst := e.active; inst != nil {
		e.cancelTimer(inst.cycleID)
		e.cancelTimer(inst.tickID)
		e.active = nil
	}
	if p := e.pending; p != nil {
		e.cancelTimer(p.timerID)
		e.pending = nil
	}
}

func (e *Engine) cancelTimer(id string) {
	if id == "" {
		return
	}
	if err := e.timer.Cancel(id); err != nil {
		slog.Warn("Engine.cancelTimer: cancel failed", "id", id, "error", err)
	}
}

func notify(l Listener, s Status) {
	if l != nil {
		l(s)
	}
}
