package flow

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/CancelPipe/internal/extract"
	"github.com/BTreeMap/CancelPipe/internal/match"
	"github.com/BTreeMap/CancelPipe/internal/models"
	"github.com/BTreeMap/CancelPipe/internal/timer"
	"github.com/BTreeMap/CancelPipe/internal/typing"
)

// Generator produces a continuation for a prompt.
type Generator interface {
	GeneratePromptWithContext(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Free-text mode texts.
const (
	FreeTextOpening      = "Why do you want to cancel?"
	FreeTextApology      = "I'm having trouble responding right now. Could you try again in a moment?"
	FreeTextGenericAsk   = "Could you tell me a bit more?"
	DefaultFreeTextSetup = "You are a customer retention agent handling a service cancellation. " +
		"Reply with one short follow-up question about the customer's last message. Do not write the customer's lines."

	maxQuestionLength = 120
	maxSnippetLength  = 45
)

var (
	stopMarkers   = []string{"\nYou:", "\nAgent:"}
	speakerPrefix = regexp.MustCompile(`(?i)^\s*agent\s*:\s*`)
	lineBreaks    = regexp.MustCompile(`[\r\n]+`)
)

// FreeTextFlow is the unscripted mode: every reply is a follow-up question
// produced by a Generator and cleaned up before delivery.
type FreeTextFlow struct {
	mu         sync.Mutex
	gen        Generator
	transcript *Transcript
	typing     *typing.Scheduler
	system     string
	started    bool
}

// FreeTextOption configures a FreeTextFlow.
type FreeTextOption func(*freeTextOptions)

type freeTextOptions struct {
	timer        timer.Timer
	typingConfig typing.Config
	system       string
}

// WithFreeTextTimer sets the timer used for typing delays.
func WithFreeTextTimer(t timer.Timer) FreeTextOption {
	return func(o *freeTextOptions) { o.timer = t }
}

// WithFreeTextTyping sets the simulated typing speed.
func WithFreeTextTyping(cfg typing.Config) FreeTextOption {
	return func(o *freeTextOptions) { o.typingConfig = cfg }
}

// WithSystemPrompt replaces the generation instruction.
func WithSystemPrompt(s string) FreeTextOption {
	return func(o *freeTextOptions) {
		if strings.TrimSpace(s) != "" {
			o.system = s
		}
	}
}

// NewFreeTextFlow creates a free-text flow backed by gen.
func NewFreeTextFlow(gen Generator, opts ...FreeTextOption) *FreeTextFlow {
	o := freeTextOptions{typingConfig: typing.DefaultConfig(), system: DefaultFreeTextSetup}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timer == nil {
		o.timer = timer.NewSimpleTimer()
	}
	f := &FreeTextFlow{gen: gen, transcript: NewTranscript(), system: o.system}
	f.typing = typing.NewScheduler(o.timer, f.transcript, typing.WithConfig(o.typingConfig))
	return f
}

// Transcript returns the message log.
func (f *FreeTextFlow) Transcript() *Transcript { return f.transcript }

// Composing reports whether a reply is still being "typed".
func (f *FreeTextFlow) Composing() bool { return f.typing.Composing() }

// Start sends the opening question. It is idempotent.
func (f *FreeTextFlow) Start() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startLocked()
}

func (f *FreeTextFlow) startLocked() time.Duration {
	if f.started {
		return f.typing.Pending()
	}
	f.started = true
	return f.typing.Schedule([]models.Message{models.AgentMessage(FreeTextOpening)})
}

// Submit records text, asks the generator for a continuation and schedules
// the cleaned-up reply. Generation failures become a fixed apology. The call
// blocks for the duration of generation.
func (f *FreeTextFlow) Submit(ctx context.Context, text string) time.Duration {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		f.startLocked()
	}
	f.typing.Flush()
	f.transcript.Append(models.UserMessage(text))

	prompt := f.transcript.String() + "\nAgent:"
	reply := FreeTextApology
	generated, err := f.gen.GeneratePromptWithContext(ctx, f.system, prompt)
	if err != nil {
		slog.Error("FreeTextFlow.Submit: generation failed", "error", err)
	} else {
		reply = FollowUpQuestion(text, CleanCompletion(generated, text))
	}
	slog.Debug("FreeTextFlow.Submit: reply ready", "length", len(reply))
	return f.typing.Schedule([]models.Message{models.AgentMessage(reply)})
}

// CleanCompletion truncates a raw generation at the first speaker marker,
// strips a leading "Agent:" and returns "" for empty output or output that
// only echoes the user's text.
func CleanCompletion(raw, userText string) string {
	s := speakerPrefix.ReplaceAllString(raw, "")
	for _, marker := range stopMarkers {
		if i := strings.Index(s, marker); i >= 0 {
			s = s[:i]
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if n := match.Normalize(s); n == "" || n == match.Normalize(userText) {
		return ""
	}
	return s
}

// FollowUpQuestion picks the first question of at most 120 characters from a
// cleaned completion, falling back to asking about the user's own words.
func FollowUpQuestion(userText, completion string) string {
	if q := firstQuestion(completion); q != "" {
		return q
	}
	if snippet := extract.ShortenForContext(userText, maxSnippetLength); snippet != "" {
		return `Could you tell me more about "` + snippet + `"?`
	}
	return FreeTextGenericAsk
}

// firstQuestion returns the first question of at most maxQuestionLength
// runes. A bare "?" is not a question and is skipped.
func firstQuestion(text string) string {
	for _, line := range lineBreaks.Split(text, -1) {
		for line != "" {
			i := strings.IndexByte(line, '?')
			if i < 0 {
				break
			}
			candidate := strings.TrimSpace(line[:i+1])
			if candidate != "?" && len([]rune(candidate)) <= maxQuestionLength {
				return candidate
			}
			line = line[i+1:]
		}
	}
	return ""
}
