package flow

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/CancelPipe/internal/challenge"
	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/script"
	"github.com/BTreeMap/CancelPipe/internal/timer"
	"github.com/BTreeMap/CancelPipe/internal/typing"
)

// Default delays of the scripted flow.
const (
	DefaultRearmDelay = 400 * time.Millisecond
	DefaultPongDelay  = 1200 * time.Millisecond
)

// Input is one user submission. Pasted is set by the input surface when the
// last edit to the text came from a paste; ChallengeID is the challenge
// instance that was active when it happened, or empty for the current one.
type Input struct {
	Text        string
	Pasted      bool
	ChallengeID string
}

// Hooks are optional notifications. OnStateChange, OnPongStart and OnComplete
// run while the flow is locked and must not call back into the flow.
// OnChallenge runs after the flow is unlocked, in emission order, and may read
// it (Snapshot, State).
type Hooks struct {
	OnStateChange func(from, to models.StateType)
	OnChallenge   func(challenge.Status)
	OnPongStart   func()
	OnComplete    func(captured map[models.FieldKey]string)
}

// Snapshot is a consistent view of a flow for renderers.
type Snapshot struct {
	State        models.StateType
	Step         int
	StepKey      models.FieldKey
	Captured     map[models.FieldKey]string
	PendingField models.FieldKey
	Composing    bool
	Challenge    challenge.Status
	HardMode     bool
	Scenario     *script.Scenario
	Messages     []models.Message
}

// CancellationFlow is the scripted conversation state machine. Every event
// (submission, timer fire, minigame result) runs to completion under one lock.
type CancellationFlow struct {
	mu sync.Mutex

	// Challenge statuses wait in statusQueue until no reaction holds mu.
	queueMu     sync.Mutex
	statusQueue []challenge.Status
	hookMu      sync.Mutex

	script     *script.Script
	timer      timer.Timer
	transcript *Transcript
	typing     *typing.Scheduler
	challenges *challenge.Engine
	hooks      Hooks

	state           models.StateType
	step            int
	captured        map[models.FieldKey]string
	pendingField    models.FieldKey
	reasonCandidate string
	reasonFollowUp  bool
	started         bool
	pongTimerID     string

	hardMode   bool
	scenario   *script.Scenario
	rearmDelay time.Duration
	pongDelay  time.Duration
}

type flowOptions struct {
	timer        timer.Timer
	typingConfig typing.Config
	screening    bool
	timing       script.Timing
	hardMode     bool
	scenario     *script.Scenario
	rng          *rand.Rand
	rearmDelay   time.Duration
	pongDelay    time.Duration
	tickInterval time.Duration
	idGenerator  func() string
	hooks        Hooks
}

// Option configures a CancellationFlow.
type Option func(*flowOptions)

// WithTimer sets the clock and timer used for every delay. Defaults to a
// wall-clock SimpleTimer.
func WithTimer(t timer.Timer) Option {
	return func(o *flowOptions) { o.timer = t }
}

// WithTypingConfig sets the simulated typing speed.
func WithTypingConfig(cfg typing.Config) Option {
	return func(o *flowOptions) { o.typingConfig = cfg }
}

// WithScreening enables the human check, treaty and pledge challenge steps.
func WithScreening() Option {
	return func(o *flowOptions) { o.screening = true }
}

// WithChallengeTiming overrides the pledge challenge limits.
func WithChallengeTiming(t script.Timing) Option {
	return func(o *flowOptions) { o.timing = t }
}

// WithHardMode requires captured values to match a generated account record.
func WithHardMode() Option {
	return func(o *flowOptions) { o.hardMode = true }
}

// WithScenario enables hard mode against a fixed account record.
func WithScenario(sc script.Scenario) Option {
	return func(o *flowOptions) {
		o.hardMode = true
		o.scenario = &sc
	}
}

// WithRand sets the random source for scenario generation.
func WithRand(r *rand.Rand) Option {
	return func(o *flowOptions) { o.rng = r }
}

// WithRearmDelay sets the pause before a challenge is armed or re-armed,
// counted from the moment the prompt has been delivered.
func WithRearmDelay(d time.Duration) Option {
	return func(o *flowOptions) { o.rearmDelay = d }
}

// WithPongDelay sets the pause between confirming and the minigame starting.
func WithPongDelay(d time.Duration) Option {
	return func(o *flowOptions) { o.pongDelay = d }
}

// WithTickInterval sets how often challenge countdowns are reported.
func WithTickInterval(d time.Duration) Option {
	return func(o *flowOptions) { o.tickInterval = d }
}

// WithChallengeIDs replaces the challenge instance-token generator.
func WithChallengeIDs(fn func() string) Option {
	return func(o *flowOptions) { o.idGenerator = fn }
}

// WithHooks registers notifications.
func WithHooks(h Hooks) Option {
	return func(o *flowOptions) { o.hooks = h }
}

// NewCancellationFlow creates a flow in the collecting state at step zero.
// Call Start to send the greeting.
func NewCancellationFlow(opts ...Option) *CancellationFlow {
	o := flowOptions{
		typingConfig: typing.DefaultConfig(),
		timing:       script.DefaultTiming(),
		rearmDelay:   DefaultRearmDelay,
		pongDelay:    DefaultPongDelay,
		tickInterval: challenge.DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timer == nil {
		o.timer = timer.NewSimpleTimer()
	}

	scriptOpts := []script.Option{script.WithTiming(o.timing)}
	if o.screening {
		scriptOpts = append(scriptOpts, script.WithScreening())
	}

	f := &CancellationFlow{
		script:     script.New(o.timer.Now, scriptOpts...),
		timer:      o.timer,
		transcript: NewTranscript(),
		hooks:      o.hooks,
		state:      models.StateCollecting,
		captured:   make(map[models.FieldKey]string),
		hardMode:   o.hardMode,
		rearmDelay: o.rearmDelay,
		pongDelay:  o.pongDelay,
	}
	f.typing = typing.NewScheduler(o.timer, f.transcript, typing.WithConfig(o.typingConfig))

	engineOpts := []challenge.Option{challenge.WithTickInterval(o.tickInterval)}
	if o.idGenerator != nil {
		engineOpts = append(engineOpts, challenge.WithIDGenerator(o.idGenerator))
	}
	if o.hooks.OnChallenge != nil {
		engineOpts = append(engineOpts, challenge.WithListener(f.queueStatus))
	}
	f.challenges = challenge.NewEngine(o.timer, engineOpts...)

	if o.hardMode {
		if o.scenario != nil {
			f.scenario = o.scenario
		} else {
			sc := f.script.GenerateScenario(o.rng)
			f.scenario = &sc
		}
	}

	slog.Debug("NewCancellationFlow: flow created", "steps", f.script.Len(), "screening", o.screening, "hardMode", f.hardMode)
	return f
}

// Script returns the step table the flow runs.
func (f *CancellationFlow) Script() *script.Script { return f.script }

// Transcript returns the message log.
func (f *CancellationFlow) Transcript() *Transcript { return f.transcript }

// Start sends the greeting and first prompt. It is idempotent and returns the
// delay until the prompt is delivered.
func (f *CancellationFlow) Start() time.Duration {
	f.mu.Lock()
	defer f.unlock()
	return f.startLocked()
}

func (f *CancellationFlow) startLocked() time.Duration {
	if f.started {
		return f.typing.Pending()
	}
	f.started = true

	var t turn
	t.say(script.Greeting)
	if f.hardMode && f.scenario != nil {
		t.say(fmt.Sprintf("Hard mode is on: every answer must match the account on file (%s).", f.scenario.AccountNumber))
	}
	f.promptStep(&t)
	slog.Info("CancellationFlow.Start: conversation started", "hardMode", f.hardMode)
	return f.deliver(t)
}

// Submit processes one user submission: pending agent replies are flushed,
// the text is recorded, and the reply turn is scheduled. It returns the delay
// until the last reply is delivered. Blank submissions are ignored.
func (f *CancellationFlow) Submit(ctx context.Context, in Input) time.Duration {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return 0
	}
	if err := ctx.Err(); err != nil {
		slog.Warn("CancellationFlow.Submit: context done, ignoring submission", "error", err)
		return 0
	}

	f.mu.Lock()
	defer f.unlock()

	if !f.started {
		f.startLocked()
	}
	f.typing.Flush()
	if in.Pasted {
		f.challenges.RecordPaste(in.ChallengeID)
	}
	f.transcript.Append(models.UserMessage(text))

	from := f.state
	t := f.dispatch(text)
	delay := f.deliver(t)
	f.afterTransition(from, delay)

	slog.Debug("CancellationFlow.Submit: handled", "from", from, "to", f.state, "step", f.step, "replies", len(t.replies), "delay", delay)
	return delay
}

// RecordPaste notes a paste into the input while instanceID was the active
// challenge; empty means the current one.
func (f *CancellationFlow) RecordPaste(instanceID string) {
	f.challenges.RecordPaste(instanceID)
}

// PlayerWon is the minigame's success callback.
func (f *CancellationFlow) PlayerWon() {
	f.mu.Lock()
	defer f.unlock()
	if f.state != models.StatePong {
		slog.Warn("CancellationFlow.PlayerWon: ignored outside the minigame", "state", f.state)
		return
	}
	f.typing.Flush()

	var t turn
	t.say(script.PongWon)
	f.setState(models.StateCompleted)
	f.deliver(t)
	slog.Info("CancellationFlow.PlayerWon: request submitted", "fields", len(f.captured))
	if f.hooks.OnComplete != nil {
		f.hooks.OnComplete(maps.Clone(f.captured))
	}
}

// AgentWon is the minigame's failure callback: all captured data is reset
// and collection starts over.
func (f *CancellationFlow) AgentWon() {
	f.mu.Lock()
	defer f.unlock()
	if f.state != models.StatePong {
		slog.Warn("CancellationFlow.AgentWon: ignored outside the minigame", "state", f.state)
		return
	}
	f.typing.Flush()

	clear(f.captured)
	f.step = 0
	f.pendingField = ""
	f.reasonCandidate = ""
	f.reasonFollowUp = false
	f.challenges.Clear()

	var t turn
	t.say(script.PongLost)
	f.setState(models.StateCollecting)
	f.promptStep(&t)
	f.deliver(t)
	slog.Info("CancellationFlow.AgentWon: minigame lost, data reset")
}

// Flush delivers any replies still being "typed".
func (f *CancellationFlow) Flush() {
	f.typing.Flush()
}

// Close cancels every timer the flow owns.
func (f *CancellationFlow) Close() {
	f.mu.Lock()
	defer f.unlock()
	f.challenges.Clear()
	f.typing.Flush()
	f.cancelPongTimer()
}

// State returns the current conversation mode.
func (f *CancellationFlow) State() models.StateType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Snapshot returns a consistent copy of the flow's state.
func (f *CancellationFlow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		State:        f.state,
		Step:         f.step,
		Captured:     maps.Clone(f.captured),
		PendingField: f.pendingField,
		Composing:    f.typing.Composing(),
		Challenge:    f.challenges.Status(),
		HardMode:     f.hardMode,
		Messages:     f.transcript.Messages(),
	}
	if f.step < f.script.Len() {
		snap.StepKey = f.script.Step(f.step).Key
	}
	if f.scenario != nil {
		sc := *f.scenario
		snap.Scenario = &sc
	}
	return snap
}

// deliver schedules the turn's replies and arms its challenge once the
// replies have been delivered.
func (f *CancellationFlow) deliver(t turn) time.Duration {
	delay := f.typing.Schedule(t.replies)
	if t.arm != nil {
		f.challenges.ArmAfter(t.arm.Key, *t.arm.Challenge, delay+f.rearmDelay)
	}
	return delay
}

// afterTransition starts the minigame timer when the flow enters pong-pending.
func (f *CancellationFlow) afterTransition(from models.StateType, delay time.Duration) {
	if from == f.state || f.state != models.StatePongPending {
		return
	}
	f.cancelPongTimer()
	id, err := f.timer.ScheduleAfter(delay+f.pongDelay, f.startPong)
	if err != nil {
		slog.Error("CancellationFlow.afterTransition: cannot schedule minigame, starting now", "error", err)
		f.enterPong()
		return
	}
	f.pongTimerID = id
}

func (f *CancellationFlow) startPong() {
	f.mu.Lock()
	defer f.unlock()
	f.pongTimerID = ""
	if f.state != models.StatePongPending {
		return
	}
	f.enterPong()
}

func (f *CancellationFlow) enterPong() {
	f.setState(models.StatePong)
	slog.Info("CancellationFlow.enterPong: minigame started")
	if f.hooks.OnPongStart != nil {
		f.hooks.OnPongStart()
	}
}

func (f *CancellationFlow) cancelPongTimer() {
	if f.pongTimerID == "" {
		return
	}
	if err := f.timer.Cancel(f.pongTimerID); err != nil {
		slog.Warn("CancellationFlow.cancelPongTimer: cancel failed", "error", err)
	}
	f.pongTimerID = ""
}

// unlock ends a reaction and hands queued challenge statuses to OnChallenge.
func (f *CancellationFlow) unlock() {
	f.mu.Unlock()
	f.drainStatuses()
}

// queueStatus is the challenge listener. Statuses emitted inside a reaction
// are delivered by that reaction's unlock; timer-driven ones are delivered
// right away when no reaction is running.
func (f *CancellationFlow) queueStatus(st challenge.Status) {
	f.queueMu.Lock()
	f.statusQueue = append(f.statusQueue, st)
	f.queueMu.Unlock()

	if !f.mu.TryLock() {
		return
	}
	f.mu.Unlock()
	f.drainStatuses()
}

// drainStatuses delivers queued statuses one drainer at a time. A status
// queued while another goroutine drains is picked up by that drainer.
func (f *CancellationFlow) drainStatuses() {
	for f.hasQueuedStatus() {
		if !f.hookMu.TryLock() {
			return
		}
		for {
			st, ok := f.popStatus()
			if !ok {
				break
			}
			f.hooks.OnChallenge(st)
		}
		f.hookMu.Unlock()
	}
}

func (f *CancellationFlow) hasQueuedStatus() bool {
	f.queueMu.Lock()
	defer f.queueMu.Unlock()
	return len(f.statusQueue) > 0
}

func (f *CancellationFlow) popStatus() (challenge.Status, bool) {
	f.queueMu.Lock()
	defer f.queueMu.Unlock()
	if len(f.statusQueue) == 0 {
		return challenge.Status{}, false
	}
	st := f.statusQueue[0]
	f.statusQueue = f.statusQueue[1:]
	return st, true
}

func (f *CancellationFlow) setState(to models.StateType) {
	from := f.state
	if from == to {
		return
	}
	if !models.IsValidTransition(from, to) {
		slog.Error("CancellationFlow.setState: unexpected transition", "from", from, "to", to)
	}
	f.state = to
	slog.Debug("CancellationFlow.setState: state changed", "from", from, "to", to)
	if f.hooks.OnStateChange != nil {
		f.hooks.OnStateChange(from, to)
	}
}
